package models

import "time"

// Relation tags record how a member was introduced into the tree,
// not a live structural role
const (
	RelationSelf        = "self"
	RelationFather      = "father"
	RelationMother      = "mother"
	RelationSon         = "son"
	RelationDaughter    = "daughter"
	RelationSpouse      = "spouse"
	RelationBrother     = "brother"
	RelationSister      = "sister"
	RelationGrandfather = "grandfather"
	RelationGrandmother = "grandmother"
)

// MemberRelations lists the valid relation tags
var MemberRelations = []string{
	RelationSelf,
	RelationFather,
	RelationMother,
	RelationSon,
	RelationDaughter,
	RelationSpouse,
	RelationBrother,
	RelationSister,
	RelationGrandfather,
	RelationGrandmother,
}

// ValidRelation reports whether the given relation tag is known
func ValidRelation(relation string) bool {
	for _, r := range MemberRelations {
		if r == relation {
			return true
		}
	}
	return false
}

// Gender options for tree members
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// ValidGender reports whether the given gender value is known
func ValidGender(gender string) bool {
	return gender == GenderMale || gender == GenderFemale || gender == GenderOther
}

// Visibility options for family trees
const (
	VisibilityPublic      = "public"
	VisibilityMembersOnly = "members-only"
)

// Member is one node in a family tree. Most members are freeform entries;
// AccountID is a weak reference set only when a real account is linked.
// Edge lists hold member IDs within the same tree.
type Member struct {
	ID         string     `json:"id"`
	AccountID  *int       `json:"account_id,omitempty"`
	Name       string     `json:"name"`
	Relation   string     `json:"relation"`
	Gender     string     `json:"gender"`
	DOB        *time.Time `json:"dob,omitempty"`
	Education  string     `json:"education,omitempty"`
	Occupation string     `json:"occupation,omitempty"`
	PhotoURL   string     `json:"photo_url,omitempty"`
	Parents    []string   `json:"parents"`
	Children   []string   `json:"children"`
	Spouse     string     `json:"spouse,omitempty"`
	Siblings   []string   `json:"siblings"`

	// Resolved from the account directory on read; never persisted
	Account *AccountSummary `json:"account,omitempty"`
}

// FamilyTree is one tree per owner account. Members are embedded and always
// read and written as a whole unit; trees are small (tens of nodes).
type FamilyTree struct {
	ID         int       `json:"id"`
	FamilyName string    `json:"family_name"`
	FamilyHead string    `json:"family_head"` // member ID of the self node
	Visibility string    `json:"visibility"`
	OwnerID    int       `json:"owner_id"`
	Members    []Member  `json:"members"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	OwnerSummary *AccountSummary `json:"owner,omitempty"`
}

// FindMember returns the member with the given ID, or nil
func (t *FamilyTree) FindMember(id string) *Member {
	for i := range t.Members {
		if t.Members[i].ID == id {
			return &t.Members[i]
		}
	}
	return nil
}

// CreateFamilyTreeRequest for creating a new tree
type CreateFamilyTreeRequest struct {
	FamilyName string `json:"family_name"`
	Visibility string `json:"visibility"`
}

// AddMemberRequest for adding a member to a tree. Either the scalar fields
// describe a brand-new member, or ExistingMemberID names a member already in
// the tree that should be attached to RelatedTo with the given relation.
type AddMemberRequest struct {
	Relation         string `json:"relation"`
	RelatedTo        string `json:"related_to,omitempty"`
	ExistingMemberID string `json:"existing_member_id,omitempty"`
	Name             string `json:"name"`
	Gender           string `json:"gender"`
	DOB              string `json:"dob,omitempty"`
	Education        string `json:"education,omitempty"`
	Occupation       string `json:"occupation,omitempty"`
	Photo            string `json:"photo,omitempty"` // data URI, uploaded before commit
}

// UpdateMemberRequest updates scalar fields in place; edges are never
// touched by an update
type UpdateMemberRequest struct {
	Name       *string `json:"name,omitempty"`
	Gender     *string `json:"gender,omitempty"`
	DOB        *string `json:"dob,omitempty"`
	Education  *string `json:"education,omitempty"`
	Occupation *string `json:"occupation,omitempty"`
	PhotoURL   *string `json:"photo_url,omitempty"`
}

// LinkAccountRequest attaches a real account to a freeform member node
type LinkAccountRequest struct {
	MemberID  string `json:"member_id"`
	AccountID int    `json:"account_id"`
}
