package requirements

import "socios/internal/models"

// Completeness is the submission state of a member's documents.
// Slices are sets; their order follows RequiredDocuments and OptionalDocuments.
type Completeness struct {
	Pending           []string `json:"pending"`
	Submitted         []string `json:"submitted"`
	OptionalSubmitted []string `json:"optional_submitted"`
	OptionalPending   []string `json:"optional_pending"`
}

// Complete reports whether no required document is pending.
func (c Completeness) Complete() bool {
	return len(c.Pending) == 0
}

// Evaluate compares the submitted document types against the requirements for status.
// Labels are compared exactly. submitted is echoed back unchanged.
func Evaluate(status models.MaritalStatus, submitted []string) Completeness {
	have := make(map[string]struct{}, len(submitted))
	for _, s := range submitted {
		have[s] = struct{}{}
	}

	c := Completeness{
		Pending:           []string{},
		Submitted:         submitted,
		OptionalSubmitted: []string{},
		OptionalPending:   []string{},
	}
	if c.Submitted == nil {
		c.Submitted = []string{}
	}

	for _, doc := range RequiredDocuments(status) {
		if _, ok := have[doc]; !ok {
			c.Pending = append(c.Pending, doc)
		}
	}
	for _, doc := range OptionalDocuments() {
		if _, ok := have[doc]; ok {
			c.OptionalSubmitted = append(c.OptionalSubmitted, doc)
		} else {
			c.OptionalPending = append(c.OptionalPending, doc)
		}
	}
	return c
}
