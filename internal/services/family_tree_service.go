package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"community-backend/internal/models"
	"community-backend/internal/tree"
)

// ErrForbidden is returned when the actor may not read or modify a tree
var ErrForbidden = errors.New("not authorized to access this family tree")

// ErrCannotRemoveSelf is returned when removal targets the tree's self node
var ErrCannotRemoveSelf = errors.New("cannot remove the self member from the tree")

// TreeExistsError rejects a second tree for one owner, carrying the
// existing tree's ID so clients can redirect to it
type TreeExistsError struct {
	TreeID int
}

func (e *TreeExistsError) Error() string {
	return fmt.Sprintf("account already owns family tree %d", e.TreeID)
}

// TreeStore is the persistence surface the service needs
type TreeStore interface {
	Create(ctx context.Context, t *models.FamilyTree) error
	GetByID(ctx context.Context, id int) (*models.FamilyTree, error)
	GetByOwner(ctx context.Context, ownerID int) (*models.FamilyTree, error)
	ListPublic(ctx context.Context, page, limit int) ([]*models.FamilyTree, int, error)
	SaveMembers(ctx context.Context, treeID int, familyHead string, members []models.Member) error
}

// AccountDirectory resolves accounts for self-node seeding and linked
// member display
type AccountDirectory interface {
	GetByID(ctx context.Context, id int) (*models.Account, error)
	SetFamilyTreeID(ctx context.Context, accountID int, treeID *int) error
}

// FamilyTreeService owns the tree lifecycle and orchestrates graph
// mutations: authorize, upload any photo, compute the edge delta, validate,
// persist in one write.
type FamilyTreeService struct {
	store    TreeStore
	accounts AccountDirectory
	uploader Uploader
	engine   *tree.Engine
}

const photoFolder = "family-tree-members"

func NewFamilyTreeService(store TreeStore, accounts AccountDirectory, uploader Uploader) *FamilyTreeService {
	return &FamilyTreeService{
		store:    store,
		accounts: accounts,
		uploader: uploader,
		engine:   tree.NewEngine(),
	}
}

// isOwnerOrAdmin is the single authorization gate for tree mutations
func isOwnerOrAdmin(actor *models.Account, t *models.FamilyTree) bool {
	return actor != nil && (actor.ID == t.OwnerID || actor.IsAdmin())
}

// canRead applies the visibility gate: members-only trees are readable
// only by their owner (admins bypass)
func canRead(actor *models.Account, t *models.FamilyTree) bool {
	if t.Visibility != models.VisibilityMembersOnly {
		return true
	}
	return isOwnerOrAdmin(actor, t)
}

// CreateTree provisions a tree for the actor, seeded with a self node
// copied by value from the account profile. An owner gets exactly one
// tree; a second create is rejected with the existing tree's ID.
func (s *FamilyTreeService) CreateTree(ctx context.Context, actor *models.Account, req *models.CreateFamilyTreeRequest) (*models.FamilyTree, error) {
	if req.FamilyName == "" {
		return nil, &tree.ValidationError{Reason: "family name is required"}
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if visibility != models.VisibilityPublic && visibility != models.VisibilityMembersOnly {
		return nil, &tree.ValidationError{Reason: "visibility must be public or members-only"}
	}

	if existing, err := s.store.GetByOwner(ctx, actor.ID); err == nil {
		return nil, &TreeExistsError{TreeID: existing.ID}
	}

	gender := actor.Gender
	if gender == "" {
		gender = models.GenderOther
	}
	self := models.Member{
		ID:         newMemberID(),
		AccountID:  &actor.ID,
		Name:       actor.FullName(),
		Relation:   models.RelationSelf,
		Gender:     gender,
		DOB:        actor.DOB,
		Education:  actor.Education,
		Occupation: actor.Occupation,
		PhotoURL:   actor.PhotoURL,
		Parents:    []string{},
		Children:   []string{},
		Siblings:   []string{},
	}

	t := &models.FamilyTree{
		FamilyName: req.FamilyName,
		FamilyHead: self.ID,
		Visibility: visibility,
		OwnerID:    actor.ID,
		Members:    []models.Member{self},
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	if err := s.accounts.SetFamilyTreeID(ctx, actor.ID, &t.ID); err != nil {
		return nil, err
	}

	s.resolveAccounts(ctx, t)
	return t, nil
}

// GetMyTree returns the actor's own tree
func (s *FamilyTreeService) GetMyTree(ctx context.Context, actor *models.Account) (*models.FamilyTree, error) {
	t, err := s.treeForAccount(ctx, actor)
	if err != nil {
		return nil, err
	}
	s.resolveAccounts(ctx, t)
	return t, nil
}

// GetTree returns a tree by ID, applying the visibility gate
func (s *FamilyTreeService) GetTree(ctx context.Context, actor *models.Account, treeID int) (*models.FamilyTree, error) {
	t, err := s.store.GetByID(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if !canRead(actor, t) {
		return nil, ErrForbidden
	}
	s.resolveAccounts(ctx, t)
	return t, nil
}

// GetTreeByOwner returns another member's tree, applying the visibility gate
func (s *FamilyTreeService) GetTreeByOwner(ctx context.Context, actor *models.Account, ownerAccountID int) (*models.FamilyTree, error) {
	owner, err := s.accounts.GetByID(ctx, ownerAccountID)
	if err != nil {
		return nil, err
	}
	t, err := s.treeForAccount(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !canRead(actor, t) {
		return nil, ErrForbidden
	}
	s.resolveAccounts(ctx, t)
	return t, nil
}

// ListPublicTrees returns a page of public trees with the total count
func (s *FamilyTreeService) ListPublicTrees(ctx context.Context, page, limit int) ([]*models.FamilyTree, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	trees, total, err := s.store.ListPublic(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	for _, t := range trees {
		s.resolveAccounts(ctx, t)
	}
	return trees, total, nil
}

// GetLayout derives the generation-band read model for a tree, rooted at
// the family head
func (s *FamilyTreeService) GetLayout(ctx context.Context, actor *models.Account, treeID int) (*tree.Layout, error) {
	t, err := s.store.GetByID(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if !canRead(actor, t) {
		return nil, ErrForbidden
	}
	s.resolveAccounts(ctx, t)
	return tree.DeriveLayout(tree.NewGraph(t.Members), t.FamilyHead)
}

// AddMember attaches a new or existing member to the tree with the
// requested relation. The photo (if any) is uploaded before any graph
// state changes, and the computed delta is persisted in a single write.
func (s *FamilyTreeService) AddMember(ctx context.Context, treeID int, actor *models.Account, req *models.AddMemberRequest) (*models.FamilyTree, error) {
	t, err := s.store.GetByID(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if !isOwnerOrAdmin(actor, t) {
		return nil, ErrForbidden
	}

	intent := tree.Intent{
		Relation: req.Relation,
		AnchorID: req.RelatedTo,
	}

	if req.ExistingMemberID != "" {
		intent.SubjectID = req.ExistingMemberID
	} else {
		member, err := s.buildMember(ctx, req)
		if err != nil {
			return nil, err
		}
		intent.NewMember = member
	}

	g := tree.NewGraph(t.Members)
	delta, err := s.engine.ComputeDelta(g, intent)
	if err != nil {
		return nil, err
	}

	updated := delta.Apply(t.Members)
	if err := tree.CheckInvariants(updated); err != nil {
		// The engine validates before Apply; reaching this means a bug, not
		// bad input. Refuse to persist a broken graph.
		return nil, fmt.Errorf("mutation produced inconsistent graph: %w", err)
	}

	head := t.FamilyHead
	if delta.FamilyHead != "" {
		head = delta.FamilyHead
	}
	if err := s.store.SaveMembers(ctx, t.ID, head, updated); err != nil {
		return nil, err
	}

	t.FamilyHead = head
	t.Members = updated
	s.resolveAccounts(ctx, t)
	return t, nil
}

// buildMember validates scalars and assembles a new member node, uploading
// its photo first so an upload failure aborts the mutation cleanly
func (s *FamilyTreeService) buildMember(ctx context.Context, req *models.AddMemberRequest) (*models.Member, error) {
	if req.Name == "" {
		return nil, &tree.ValidationError{Reason: "member name is required"}
	}
	if !models.ValidGender(req.Gender) {
		return nil, &tree.ValidationError{Reason: "gender must be male, female or other"}
	}
	dob, err := parseDOB(req.DOB)
	if err != nil {
		return nil, err
	}

	photoURL := ""
	if req.Photo != "" {
		result, err := s.uploader.UploadDataURI(ctx, req.Photo, photoFolder)
		if err != nil {
			return nil, err
		}
		photoURL = result.URL
	}

	return &models.Member{
		ID:         newMemberID(),
		Name:       req.Name,
		Relation:   req.Relation,
		Gender:     req.Gender,
		DOB:        dob,
		Education:  req.Education,
		Occupation: req.Occupation,
		PhotoURL:   photoURL,
		Parents:    []string{},
		Children:   []string{},
		Siblings:   []string{},
	}, nil
}

// UpdateMember patches a member's scalar fields in place. Relationship
// edges are never touched by an update.
func (s *FamilyTreeService) UpdateMember(ctx context.Context, treeID int, actor *models.Account, memberID string, req *models.UpdateMemberRequest) (*models.FamilyTree, error) {
	t, err := s.store.GetByID(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if !isOwnerOrAdmin(actor, t) {
		return nil, ErrForbidden
	}

	member := t.FindMember(memberID)
	if member == nil {
		return nil, tree.ErrMemberNotFound
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, &tree.ValidationError{Reason: "member name cannot be empty"}
		}
		member.Name = *req.Name
	}
	if req.Gender != nil {
		if !models.ValidGender(*req.Gender) {
			return nil, &tree.ValidationError{Reason: "gender must be male, female or other"}
		}
		member.Gender = *req.Gender
	}
	if req.DOB != nil {
		dob, err := parseDOB(*req.DOB)
		if err != nil {
			return nil, err
		}
		member.DOB = dob
	}
	if req.Education != nil {
		member.Education = *req.Education
	}
	if req.Occupation != nil {
		member.Occupation = *req.Occupation
	}
	if req.PhotoURL != nil {
		member.PhotoURL = *req.PhotoURL
	}

	if err := s.store.SaveMembers(ctx, t.ID, t.FamilyHead, t.Members); err != nil {
		return nil, err
	}
	s.resolveAccounts(ctx, t)
	return t, nil
}

// RemoveMember deletes a member and excises every edge referencing it.
// The self node can never be removed.
func (s *FamilyTreeService) RemoveMember(ctx context.Context, treeID int, actor *models.Account, memberID string) (*models.FamilyTree, error) {
	t, err := s.store.GetByID(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if !isOwnerOrAdmin(actor, t) {
		return nil, ErrForbidden
	}

	member := t.FindMember(memberID)
	if member == nil {
		return nil, tree.ErrMemberNotFound
	}
	if member.Relation == models.RelationSelf {
		return nil, ErrCannotRemoveSelf
	}

	linkedAccount := member.AccountID
	updated := tree.RemoveMember(t.Members, memberID)

	if err := s.store.SaveMembers(ctx, t.ID, t.FamilyHead, updated); err != nil {
		return nil, err
	}

	// A removed member's linked account no longer belongs to this tree,
	// unless the account is the owner's own.
	if linkedAccount != nil && *linkedAccount != t.OwnerID {
		if err := s.accounts.SetFamilyTreeID(ctx, *linkedAccount, nil); err != nil {
			return nil, err
		}
	}

	t.Members = updated
	s.resolveAccounts(ctx, t)
	return t, nil
}

// LinkAccount attaches a weak account reference to a freeform member node.
// The node's scalar fields are left untouched.
func (s *FamilyTreeService) LinkAccount(ctx context.Context, treeID int, actor *models.Account, req *models.LinkAccountRequest) (*models.FamilyTree, error) {
	t, err := s.store.GetByID(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if !isOwnerOrAdmin(actor, t) {
		return nil, ErrForbidden
	}

	member := t.FindMember(req.MemberID)
	if member == nil {
		return nil, tree.ErrMemberNotFound
	}

	if _, err := s.accounts.GetByID(ctx, req.AccountID); err != nil {
		return nil, err
	}

	accountID := req.AccountID
	member.AccountID = &accountID

	if err := s.store.SaveMembers(ctx, t.ID, t.FamilyHead, t.Members); err != nil {
		return nil, err
	}
	if err := s.accounts.SetFamilyTreeID(ctx, accountID, &t.ID); err != nil {
		return nil, err
	}

	s.resolveAccounts(ctx, t)
	return t, nil
}

// treeForAccount finds the tree an account belongs to: the recorded tree
// id first, falling back to ownership
func (s *FamilyTreeService) treeForAccount(ctx context.Context, account *models.Account) (*models.FamilyTree, error) {
	if account.FamilyTreeID != nil {
		if t, err := s.store.GetByID(ctx, *account.FamilyTreeID); err == nil {
			return t, nil
		}
	}
	return s.store.GetByOwner(ctx, account.ID)
}

// resolveAccounts decorates a tree with owner and linked-account display
// data. Missing accounts are ignored: the reference is weak and the
// account may have been deleted.
func (s *FamilyTreeService) resolveAccounts(ctx context.Context, t *models.FamilyTree) {
	if owner, err := s.accounts.GetByID(ctx, t.OwnerID); err == nil {
		summary := owner.Summary()
		t.OwnerSummary = &summary
	}
	for i := range t.Members {
		m := &t.Members[i]
		if m.AccountID == nil {
			continue
		}
		if account, err := s.accounts.GetByID(ctx, *m.AccountID); err == nil {
			summary := account.Summary()
			m.Account = &summary
		}
	}
}

func parseDOB(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if ts, err := time.Parse(layout, value); err == nil {
			return &ts, nil
		}
	}
	return nil, &tree.ValidationError{Reason: "date of birth must be YYYY-MM-DD"}
}

func newMemberID() string {
	return "mem_" + uuid.NewString()
}
