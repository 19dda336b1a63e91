package services

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/Dosada05/pickleball-league/live"
	"github.com/Dosada05/pickleball-league/models"
	"github.com/Dosada05/pickleball-league/repositories"
	"github.com/Dosada05/pickleball-league/storage"
)

type memMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*models.Match
	saves   int
	saveErr error
}

func newMemMatchRepo(matches ...*models.Match) *memMatchRepo {
	r := &memMatchRepo{matches: make(map[string]*models.Match)}
	for _, m := range matches {
		c := m.Clone()
		c.Revision = 1
		r.matches[m.ID] = c
	}
	return r
}

func (r *memMatchRepo) Create(_ context.Context, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[m.ID]; ok {
		return repositories.ErrMatchConflict
	}
	m.Revision = 1
	r.matches[m.ID] = m.Clone()
	return nil
}

func (r *memMatchRepo) GetByID(_ context.Context, id string) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return m.Clone(), nil
}

func (r *memMatchRepo) ListByTournament(_ context.Context, tournamentID string) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memMatchRepo) Save(_ context.Context, m *models.Match) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return 0, r.saveErr
	}
	cur, ok := r.matches[m.ID]
	if !ok {
		return 0, repositories.ErrMatchNotFound
	}
	if cur.Revision != m.Revision {
		return 0, repositories.ErrMatchRevisionConflict
	}
	c := m.Clone()
	c.Revision = m.Revision + 1
	r.matches[m.ID] = c
	r.saves++
	return c.Revision, nil
}

func (r *memMatchRepo) stored(id string) *models.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.matches[id].Clone()
}

func (r *memMatchRepo) setSaveErr(err error) {
	r.mu.Lock()
	r.saveErr = err
	r.mu.Unlock()
}

func (r *memMatchRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// touch simulates a write from another umpire session.
func (r *memMatchRepo) touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[id].Revision++
}

type memPlayerRepo struct {
	mu      sync.Mutex
	players map[string]*models.Player
}

func newMemPlayerRepo(players ...*models.Player) *memPlayerRepo {
	r := &memPlayerRepo{players: make(map[string]*models.Player)}
	for _, p := range players {
		c := *p
		r.players[p.ID] = &c
	}
	return r
}

func (r *memPlayerRepo) Create(_ context.Context, p *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[p.ID]; ok {
		return repositories.ErrPlayerConflict
	}
	c := *p
	r.players[p.ID] = &c
	return nil
}

func (r *memPlayerRepo) GetByID(_ context.Context, id string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	c := *p
	return &c, nil
}

func (r *memPlayerRepo) ListByTeam(_ context.Context, teamID string) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Player, 0)
	for _, p := range r.players {
		if p.TeamID == teamID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages map[string][]live.Message
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{messages: make(map[string][]live.Message)}
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID string, message live.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[roomID] = append(b.messages[roomID], message)
}

func (b *recordingBroadcaster) room(roomID string) []live.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]live.Message(nil), b.messages[roomID]...)
}

type memArchive struct {
	mu   sync.Mutex
	objs map[string][]byte
}

func (a *memArchive) Put(_ context.Context, key string, _ string, body io.Reader) (*storage.ArchiveResult, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.objs == nil {
		a.objs = make(map[string][]byte)
	}
	a.objs[key] = b
	return &storage.ArchiveResult{Key: key}, nil
}

func (a *memArchive) GetPublicURL(key string) string { return "https://archive.test/" + key }
