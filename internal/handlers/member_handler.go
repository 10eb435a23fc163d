package handlers

import (
	"bytes"
	"strings"
	"time"

	"socios/internal/middleware"
	"socios/internal/models"
	"socios/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles HTTP requests for members and their export.
type MemberHandler struct {
	members  *services.MemberService
	exports  *services.ExportService
	validate *validator.Validate
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(members *services.MemberService, exports *services.ExportService) *MemberHandler {
	return &MemberHandler{
		members:  members,
		exports:  exports,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the member routes on router, which is mounted at /members
// and requires authentication.
func (h *MemberHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleList)
	router.Post("/", h.HandleCreate)
	router.Get("/export", h.HandleExport)
	router.Get("/:id", h.HandleGet)
	router.Put("/:id", h.HandleUpdate)
	router.Delete("/:id", h.HandleDelete)
}

// MemberRequest is the body of member create and update requests.
type MemberRequest struct {
	GivenName             string `json:"given_name" validate:"required,max=100"`
	PaternalSurname       string `json:"paternal_surname" validate:"required,max=100"`
	MaternalSurname       string `json:"maternal_surname" validate:"required,max=100"`
	RFC                   string `json:"rfc" validate:"required,min=12,max=13"`
	CURP                  string `json:"curp" validate:"required,len=18"`
	BirthDate             string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Address               string `json:"address" validate:"required,max=200"`
	Email                 string `json:"email" validate:"required,email,max=120"`
	Landline              string `json:"landline" validate:"max=20"`
	Mobile                string `json:"mobile" validate:"max=20"`
	MaritalStatus         string `json:"marital_status" validate:"required,oneof=soltero casado divorciado viudo"`
	SpouseGivenName       string `json:"spouse_given_name" validate:"required_if=MaritalStatus casado,max=100"`
	SpousePaternalSurname string `json:"spouse_paternal_surname" validate:"required_if=MaritalStatus casado,max=100"`
	SpouseMaternalSurname string `json:"spouse_maternal_surname" validate:"required_if=MaritalStatus casado,max=100"`
}

// normalize trims every field so that whitespace-only values count as missing.
func (r *MemberRequest) normalize() {
	for _, f := range []*string{
		&r.GivenName, &r.PaternalSurname, &r.MaternalSurname, &r.RFC, &r.CURP,
		&r.BirthDate, &r.Address, &r.Email, &r.Landline, &r.Mobile, &r.MaritalStatus,
		&r.SpouseGivenName, &r.SpousePaternalSurname, &r.SpouseMaternalSurname,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// input converts a normalized, validated request. Blank optional fields become absent.
func (r MemberRequest) input() services.MemberInput {
	birthDate, _ := time.Parse("2006-01-02", r.BirthDate)
	return services.MemberInput{
		GivenName:             r.GivenName,
		PaternalSurname:       r.PaternalSurname,
		MaternalSurname:       r.MaternalSurname,
		RFC:                   r.RFC,
		CURP:                  r.CURP,
		BirthDate:             birthDate,
		Address:               r.Address,
		Email:                 r.Email,
		Landline:              optional(r.Landline),
		Mobile:                optional(r.Mobile),
		MaritalStatus:         models.MaritalStatus(r.MaritalStatus),
		SpouseGivenName:       optional(r.SpouseGivenName),
		SpousePaternalSurname: optional(r.SpousePaternalSurname),
		SpouseMaternalSurname: optional(r.SpouseMaternalSurname),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (h *MemberHandler) parse(c *fiber.Ctx) (services.MemberInput, bool, error) {
	var req MemberRequest
	if err := c.BodyParser(&req); err != nil {
		return services.MemberInput{}, false, invalidBody(c, err)
	}
	req.normalize()
	if err := h.validate.Struct(req); err != nil {
		return services.MemberInput{}, false, validationFailed(c, err)
	}
	return req.input(), true, nil
}

// HandleList returns the members of the authenticated user.
func (h *MemberHandler) HandleList(c *fiber.Ctx) error {
	members, err := h.members.List(middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve members")
	}
	return c.JSON(members)
}

// HandleCreate registers a new member for the authenticated user.
func (h *MemberHandler) HandleCreate(c *fiber.Ctx) error {
	in, ok, err := h.parse(c)
	if !ok {
		return err
	}
	member, err := h.members.Register(middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err, "Could not register member")
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// HandleGet returns one member with its documents.
func (h *MemberHandler) HandleGet(c *fiber.Ctx) error {
	member, docs, err := h.members.GetWithDocuments(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve member")
	}
	member.Documents = docs
	return c.JSON(member)
}

// HandleUpdate replaces the attributes of a member.
func (h *MemberHandler) HandleUpdate(c *fiber.Ctx) error {
	in, ok, err := h.parse(c)
	if !ok {
		return err
	}
	member, err := h.members.Update(middleware.UserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err, "Could not update member")
	}
	return c.JSON(member)
}

// HandleDelete removes a member together with its documents.
func (h *MemberHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.members.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err, "Could not delete member")
	}
	return c.JSON(fiber.Map{
		"message": "Member deleted successfully",
	})
}

// HandleExport downloads the authenticated user's members as CSV.
func (h *MemberHandler) HandleExport(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.exports.WriteCSV(&buf, middleware.UserID(c)); err != nil {
		return respondError(c, err, "Could not export members")
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+services.ExportFilename)
	return c.Send(buf.Bytes())
}
