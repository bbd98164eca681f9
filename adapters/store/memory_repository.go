package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/samoylenkodmitry/shrtlin/core"
)

// MemoryUserRepository implements ports.UserRepository with in-process
// maps. Primarily intended for tests and keyless local runs.
type MemoryUserRepository struct {
	mu         sync.Mutex
	nextID     int64
	users      map[int64]core.User
	challenges map[string]int64
}

// NewMemoryUserRepository creates an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		nextID:     1,
		users:      make(map[int64]core.User),
		challenges: make(map[string]int64),
	}
}

func (r *MemoryUserRepository) CreateFromChallenge(_ context.Context, nick, challenge string) (core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.challenges[challenge]; ok {
		return core.User{}, core.ErrUserExists
	}

	user := core.User{ID: r.nextID, Nick: nick}
	r.nextID++
	if user.Nick == "" {
		user.Nick = fmt.Sprintf("user%d", user.ID)
	}
	r.users[user.ID] = user
	r.challenges[challenge] = user.ID
	return user, nil
}

func (r *MemoryUserRepository) Get(_ context.Context, id int64) (core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) UpdateNick(_ context.Context, id int64, nick string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return false, nil
	}
	user.Nick = nick
	r.users[id] = user
	return true, nil
}

// MemoryURLRepository implements ports.URLRepository with in-process
// maps, assigning ids and base62 codes the way the SQL adapter does.
type MemoryURLRepository struct {
	mu     sync.Mutex
	nextID int64
	urls   map[int64]core.UrlInfo
	byCode map[string]int64
}

// NewMemoryURLRepository creates an empty in-memory URL repository.
func NewMemoryURLRepository() *MemoryURLRepository {
	return &MemoryURLRepository{
		nextID: 1,
		urls:   make(map[int64]core.UrlInfo),
		byCode: make(map[string]int64),
	}
}

func (r *MemoryURLRepository) Create(_ context.Context, info core.UrlInfo) (core.UrlInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info.ID = r.nextID
	r.nextID++
	info.ShortURL = core.EncodeID(info.ID)
	if info.Timestamp == 0 {
		info.Timestamp = time.Now().UnixMilli()
	}
	r.urls[info.ID] = info
	r.byCode[info.ShortURL] = info.ID
	return info, nil
}

func (r *MemoryURLRepository) ListByUser(_ context.Context, userID int64, page, pageSize int) ([]core.UrlInfo, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []core.UrlInfo
	for _, u := range r.urls {
		if u.UserID == userID {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	total := len(all)
	start := (page - 1) * pageSize
	if start < 0 || start >= total {
		return []core.UrlInfo{}, total, nil
	}
	end := int(math.Min(float64(start+pageSize), float64(total)))
	return all[start:end], total, nil
}

func (r *MemoryURLRepository) Remove(_ context.Context, id, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.urls[id]
	if !ok || u.UserID != userID {
		return false, nil
	}
	delete(r.urls, id)
	delete(r.byCode, u.ShortURL)
	return true, nil
}

func (r *MemoryURLRepository) GetByCode(_ context.Context, code string) (core.UrlInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byCode[code]
	if !ok {
		return core.UrlInfo{}, core.ErrURLNotFound
	}
	return r.urls[id], nil
}

func (r *MemoryURLRepository) IncrementClicks(_ context.Context, id int64, qr bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.urls[id]
	if !ok {
		return core.ErrURLNotFound
	}
	u.Clicks++
	if qr {
		u.QrClicks++
	}
	r.urls[id] = u
	return nil
}
