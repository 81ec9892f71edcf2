package model

// GuildRecord is the persisted economy document for one guild.
type GuildRecord struct {
	Users []*UserRecord `json:"users"`
	Shop  []*ShopItem   `json:"shop"`
}

// NewGuildRecord returns an empty guild document.
func NewGuildRecord() *GuildRecord {
	return &GuildRecord{
		Users: []*UserRecord{},
		Shop:  []*ShopItem{},
	}
}

// FindUser returns the user with the given id, or nil.
func (g *GuildRecord) FindUser(userID string) *UserRecord {
	for _, u := range g.Users {
		if u.ID == userID {
			return u
		}
	}
	return nil
}

// EnsureUser returns the user with the given id, appending a zero record if absent.
// The bool reports whether the user was created.
func (g *GuildRecord) EnsureUser(userID string) (*UserRecord, bool) {
	if u := g.FindUser(userID); u != nil {
		return u, false
	}
	u := NewUserRecord(userID)
	g.Users = append(g.Users, u)
	return u, true
}

// FindItem returns the catalog item with the given id, or nil.
func (g *GuildRecord) FindItem(itemID int) *ShopItem {
	for _, item := range g.Shop {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

// Normalize repairs documents written by older versions: nil collections become
// empty, duplicate users are dropped (first wins) and every user is normalized.
// It reports whether anything changed.
func (g *GuildRecord) Normalize() bool {
	changed := false
	if g.Users == nil {
		g.Users = []*UserRecord{}
		changed = true
	}
	if g.Shop == nil {
		g.Shop = []*ShopItem{}
		changed = true
	}

	seen := make(map[string]struct{}, len(g.Users))
	users := g.Users[:0]
	for _, u := range g.Users {
		if u == nil {
			changed = true
			continue
		}
		if _, dup := seen[u.ID]; dup {
			changed = true
			continue
		}
		seen[u.ID] = struct{}{}
		if u.Normalize() {
			changed = true
		}
		users = append(users, u)
	}
	g.Users = users
	return changed
}
