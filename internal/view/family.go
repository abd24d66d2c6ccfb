package view

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dukerupert/famdesk/internal/api"
	"github.com/dukerupert/famdesk/internal/model"
	"github.com/dukerupert/famdesk/internal/validate"
)

// FamilyAPI is the family-member resource on the backend.
type FamilyAPI interface {
	ListFamily(ctx context.Context) ([]model.FamilyMember, error)
	CreateFamily(ctx context.Context, in model.FamilyMemberInput) error
	UpdateFamily(ctx context.Context, id string, in model.FamilyMemberInput) error
	DeleteFamily(ctx context.Context, id string) error
}

// FamilyForm mirrors the add/edit dialog fields as typed.
type FamilyForm struct {
	Name         string
	Relationship string
	Age          string
}

// FormFromMember fills the dialog from an existing record.
func FormFromMember(m model.FamilyMember) FamilyForm {
	f := FamilyForm{
		Name:         m.Name,
		Relationship: string(m.Relationship),
	}
	if m.Age != nil {
		f.Age = itoa(*m.Age)
	}
	return f
}

// Payload validates the form (name, then relationship, then age if given)
// and builds the request body. On failure the message of the first failing
// check is returned.
func (f FamilyForm) Payload() (model.FamilyMemberInput, string) {
	if res := validate.Name(f.Name); !res.Valid {
		return model.FamilyMemberInput{}, res.Error
	}
	if f.Relationship == "" {
		return model.FamilyMemberInput{}, "Relationship is required"
	}
	rel := model.Relationship(f.Relationship)
	if !rel.Valid() {
		return model.FamilyMemberInput{}, "Relationship must be one of Spouse, Child, Parent, Sibling, or Other"
	}

	in := model.FamilyMemberInput{
		Name:         strings.TrimSpace(f.Name),
		Relationship: rel,
	}
	if strings.TrimSpace(f.Age) != "" {
		res := validate.Age(f.Age)
		if !res.Valid {
			return model.FamilyMemberInput{}, res.Error
		}
		age := res.Value
		in.Age = &age
	}
	return in, ""
}

// Home is the state of the family-member page for one render: the cached
// list, the shared add/edit dialog and the current error message.
type Home struct {
	api    FamilyAPI
	logger *slog.Logger

	Members    []model.FamilyMember
	Loading    bool
	Error      string
	DialogOpen bool
	Editing    *model.FamilyMember
	Form       FamilyForm
}

func NewHome(familyAPI FamilyAPI, logger *slog.Logger) *Home {
	if logger == nil {
		logger = slog.Default()
	}
	return &Home{
		api:     familyAPI,
		logger:  logger,
		Members: []model.FamilyMember{},
		Loading: true,
	}
}

// Load replaces the cached list with the backend's.
func (h *Home) Load(ctx context.Context) {
	defer func() { h.Loading = false }()

	members, err := h.api.ListFamily(ctx)
	if err != nil {
		h.logger.Warn("load family members", "error", err)
		h.Error = "Failed to load family members"
		h.Members = []model.FamilyMember{}
		return
	}
	h.Members = members
}

// Find returns the cached member with id.
func (h *Home) Find(id string) (model.FamilyMember, bool) {
	for _, m := range h.Members {
		if m.ID == id {
			return m, true
		}
	}
	return model.FamilyMember{}, false
}

// OpenCreate opens an empty dialog.
func (h *Home) OpenCreate() {
	h.Editing = nil
	h.Form = FamilyForm{}
	h.DialogOpen = true
	h.Error = ""
}

// OpenEdit opens the dialog pre-filled with m.
func (h *Home) OpenEdit(m model.FamilyMember) {
	h.Editing = &m
	h.Form = FormFromMember(m)
	h.DialogOpen = true
	h.Error = ""
}

// Close discards the dialog and its form.
func (h *Home) Close() {
	h.DialogOpen = false
	h.Editing = nil
	h.Form = FamilyForm{}
	h.Error = ""
}

// Submit saves the dialog. Validation failures never reach the backend. On
// success the dialog closes and the list is fetched again.
func (h *Home) Submit(ctx context.Context) bool {
	in, msg := h.Form.Payload()
	if msg != "" {
		h.Error = msg
		return false
	}

	var err error
	if h.Editing != nil {
		err = h.api.UpdateFamily(ctx, h.Editing.ID, in)
	} else {
		err = h.api.CreateFamily(ctx, in)
	}
	if err != nil {
		h.logger.Warn("save family member", "error", err)
		if msg := api.ErrorMessage(err); msg != "" {
			h.Error = msg
		} else {
			h.Error = "Failed to save family member"
		}
		return false
	}

	h.Close()
	h.Load(ctx)
	return true
}

// Delete removes the member with id once the user has confirmed. An
// unconfirmed delete does nothing.
func (h *Home) Delete(ctx context.Context, id string, confirmed bool) bool {
	if strings.TrimSpace(id) == "" {
		h.Error = "Invalid family member ID"
		return false
	}
	if !confirmed {
		return false
	}

	if err := h.api.DeleteFamily(ctx, id); err != nil {
		h.logger.Warn("delete family member", "id", id, "error", err)
		h.Error = "Failed to delete family member. Please try again."
		return false
	}

	h.Load(ctx)
	return true
}
