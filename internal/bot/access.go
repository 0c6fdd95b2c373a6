package bot

// AccessDeniedMessage is the only reply users outside the allow-list get.
const AccessDeniedMessage = "Access Denied"

// AccessList is an allow-list of Telegram user ids.
type AccessList struct {
	ids map[int64]struct{}
}

func NewAccessList(ids []int64) *AccessList {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return &AccessList{ids: m}
}

func (a *AccessList) Allowed(userID int64) bool {
	_, ok := a.ids[userID]
	return ok
}
