package core

import "fieldforce.com/fieldforce/fieldforce/model"

// Viewer is the acting user.
type Viewer struct {
	ID       string     `json:"id"`
	Role     model.Role `json:"role"`
	BranchID string     `json:"branchId"`
}

func ViewerOf(p *model.Profile) Viewer {
	return Viewer{ID: p.ID, Role: p.Role, BranchID: p.Branch()}
}

// CanView is the single visibility rule for location and attendance data.
func CanView(viewer Viewer, candidate *model.Profile) bool {
	if candidate == nil {
		return false
	}
	switch viewer.Role {
	case model.RoleSuperAdmin:
		return true
	case model.RoleBranchAdmin:
		return viewer.BranchID != "" && candidate.Branch() == viewer.BranchID
	default:
		return candidate.ID == viewer.ID
	}
}

// VisibleProfiles filters roster with CanView.
func VisibleProfiles(viewer Viewer, roster []model.Profile) []model.Profile {
	out := make([]model.Profile, 0, len(roster))
	for i := range roster {
		if CanView(viewer, &roster[i]) {
			out = append(out, roster[i])
		}
	}
	return out
}
