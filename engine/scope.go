package engine

import (
	"context"
	"strings"
)

// InquiryMode decides how deep a project's configurations are scoped.
type InquiryMode string

const (
	ModeProject InquiryMode = "project"
	ModeArea    InquiryMode = "area"
	ModeSubArea InquiryMode = "sub_area"
)

var InquiryModes = []InquiryMode{ModeProject, ModeArea, ModeSubArea}

// ScopeKey identifies the working set a selection belongs to.
type ScopeKey struct {
	ProjectID string `json:"projectId"`
	AreaID    string `json:"areaId,omitempty"`
	SubAreaID string `json:"subAreaId,omitempty"`
}

func ProjectScope(projectID string) ScopeKey {
	return ScopeKey{ProjectID: projectID}
}

func AreaScope(projectID, areaID string) ScopeKey {
	return ScopeKey{ProjectID: projectID, AreaID: areaID}
}

func SubAreaScope(projectID, areaID, subAreaID string) ScopeKey {
	return ScopeKey{ProjectID: projectID, AreaID: areaID, SubAreaID: subAreaID}
}

// String renders the key as "project/area/sub_area", omitting empty trailing
// parts. It sorts scopes of one project in hierarchy order.
func (k ScopeKey) String() string {
	parts := []string{k.ProjectID}
	if k.AreaID != "" || k.SubAreaID != "" {
		parts = append(parts, k.AreaID)
	}
	if k.SubAreaID != "" {
		parts = append(parts, k.SubAreaID)
	}
	return strings.Join(parts, "/")
}

// Depth returns the inquiry mode the key's shape corresponds to.
func (k ScopeKey) Depth() InquiryMode {
	switch {
	case k.SubAreaID != "":
		return ModeSubArea
	case k.AreaID != "":
		return ModeArea
	}
	return ModeProject
}

// Check validates the key's shape against an inquiry mode.
func (k ScopeKey) Check(mode InquiryMode) error {
	if k.ProjectID == "" {
		return &InvalidScopeError{Scope: k, Reason: "project id is required"}
	}
	if k.SubAreaID != "" && k.AreaID == "" {
		return &InvalidScopeError{Scope: k, Reason: "sub-area given without an area"}
	}
	if mode == "" {
		return nil
	}
	if k.Depth() != mode {
		return &InvalidScopeError{Scope: k, Reason: "project inquiry mode is " + string(mode)}
	}
	return nil
}

type Project struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	ReferenceNumber string      `json:"referenceNumber,omitempty"`
	Mode            InquiryMode `json:"inquiryMode"`
}

type Area struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
}

type SubArea struct {
	ID     string `json:"id"`
	AreaID string `json:"areaId"`
	Name   string `json:"name"`
}

// ProjectDirectory resolves the project hierarchy used to validate scope keys
// and label frozen line items.
type ProjectDirectory interface {
	GetProject(ctx context.Context, id string) (Project, error)
	GetArea(ctx context.Context, id string) (Area, error)
	GetSubArea(ctx context.Context, id string) (SubArea, error)
}
