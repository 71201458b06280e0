package member

import (
	"sync"

	"github.com/mross/choreboard/internal/store"
)

// Profile is what the presentation layer needs to label a chore's assignee.
type Profile struct {
	MemberID    string `json:"member_id,omitempty"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	AvatarEmoji string `json:"avatar_emoji,omitempty"`
}

// Anyone is served for unassigned chores and for assignee ids that no longer
// resolve to a member (the member left the household).
var Anyone = Profile{Name: "Anyone"}

// Resolver maps assignee ids to member display profiles. It is read-only
// over the membership and caches per household; Invalidate drops a
// household's cache after membership changes.
type Resolver struct {
	mu      sync.RWMutex
	members *store.MemberStore
	cache   map[string]map[string]Profile
}

func NewResolver(members *store.MemberStore) *Resolver {
	return &Resolver{
		members: members,
		cache:   make(map[string]map[string]Profile),
	}
}

// Resolve returns the display profile for a chore's assignee. A nil assignee
// means the chore is open to anyone.
func (r *Resolver) Resolve(householdID string, assignedTo *string) (Profile, error) {
	if assignedTo == nil {
		return Anyone, nil
	}

	r.mu.RLock()
	profiles, ok := r.cache[householdID]
	r.mu.RUnlock()

	if !ok {
		var err error
		profiles, err = r.load(householdID)
		if err != nil {
			return Anyone, err
		}
	}

	p, ok := profiles[*assignedTo]
	if !ok {
		return Anyone, nil
	}
	return p, nil
}

// Invalidate drops the cached profiles for a household.
func (r *Resolver) Invalidate(householdID string) {
	r.mu.Lock()
	delete(r.cache, householdID)
	r.mu.Unlock()
}

func (r *Resolver) load(householdID string) (map[string]Profile, error) {
	members, err := r.members.ListByHousehold(householdID)
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]Profile, len(members))
	for _, m := range members {
		profiles[m.ID] = Profile{
			MemberID:    m.ID,
			Name:        m.Name,
			Color:       m.Color,
			AvatarEmoji: m.AvatarEmoji,
		}
	}

	r.mu.Lock()
	r.cache[householdID] = profiles
	r.mu.Unlock()
	return profiles, nil
}
