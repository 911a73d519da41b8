package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/rank-ladder/models"
	"github.com/Dosada05/rank-ladder/repositories"
)

// memStore backs every repository fake. WithinTx serializes units of work
// and restores the previous state when fn fails.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users       map[int]*models.User
	teams       map[int]*models.Team
	memberships map[[2]int]*models.Membership
	challenges  map[int]*models.Challenge
	history     []*models.RankHistory
	nextID      int

	failures map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[int]*models.User),
		teams:       make(map[int]*models.Team),
		memberships: make(map[[2]int]*models.Membership),
		challenges:  make(map[int]*models.Challenge),
		nextID:      1000,
		failures:    make(map[string]error),
	}
}

func (s *memStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *memStore) clearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]error)
}

// failure must be called with mu held.
func (s *memStore) failure(op string) error {
	return s.failures[op]
}

func (s *memStore) addUser(id int, nickname string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = &models.User{ID: id, Nickname: nickname, Email: nickname + "@ladder.test", Role: models.RolePlayer}
}

func (s *memStore) addTeam(id int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[id] = &models.Team{ID: id, Name: name}
}

func (s *memStore) addMember(teamID, userID, rank int, status models.MembershipStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.memberships[[2]int{teamID, userID}] = &models.Membership{
		ID: s.nextID, TeamID: teamID, UserID: userID, Rank: rank, Status: status, Role: models.MembershipRoleMember,
	}
}

func (s *memStore) addChallenge(c models.Challenge) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.nextID++
		c.ID = s.nextID
	}
	s.challenges[c.ID] = &c
	return c.ID
}

func (s *memStore) rank(teamID, userID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memberships[[2]int{teamID, userID}].Rank
}

func (s *memStore) challenge(id int) models.Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.challenges[id]
}

func (s *memStore) historyFor(challengeID int) []models.RankHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.RankHistory, 0)
	for _, h := range s.history {
		if h.ChallengeID != nil && *h.ChallengeID == challengeID {
			out = append(out, *h)
		}
	}
	return out
}

func (s *memStore) historyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

type memSnapshot struct {
	memberships map[[2]int]models.Membership
	challenges  map[int]models.Challenge
	history     []*models.RankHistory
	nextID      int
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		memberships: make(map[[2]int]models.Membership, len(s.memberships)),
		challenges:  make(map[int]models.Challenge, len(s.challenges)),
		history:     append([]*models.RankHistory(nil), s.history...),
		nextID:      s.nextID,
	}
	for k, m := range s.memberships {
		snap.memberships[k] = *m
	}
	for k, c := range s.challenges {
		snap.challenges[k] = *c
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = make(map[[2]int]*models.Membership, len(snap.memberships))
	for k, m := range snap.memberships {
		m := m
		s.memberships[k] = &m
	}
	s.challenges = make(map[int]*models.Challenge, len(snap.challenges))
	for k, c := range snap.challenges {
		c := c
		s.challenges[k] = &c
	}
	s.history = snap.history
	s.nextID = snap.nextID
}

// Transactor

func (s *memStore) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	beginErr := s.failure("tx.begin")
	s.mu.Unlock()
	if beginErr != nil {
		return beginErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(snap)
		return err
	}

	s.mu.Lock()
	commitErr := s.failure("tx.commit")
	s.mu.Unlock()
	if commitErr != nil {
		s.restore(snap)
		return commitErr
	}
	return nil
}

// Memberships

type memMembershipRepo struct{ s *memStore }

func (r memMembershipRepo) ListByUser(ctx context.Context, exec repositories.SQLExecutor, userID int) ([]*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("membership.list_by_user"); err != nil {
		return nil, err
	}
	out := make([]*models.Membership, 0)
	for _, m := range r.s.memberships {
		if m.UserID == userID {
			c := *m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (r memMembershipRepo) GetByTeamAndUser(ctx context.Context, exec repositories.SQLExecutor, teamID, userID int) (*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.memberships[[2]int{teamID, userID}]
	if !ok {
		return nil, repositories.ErrMembershipNotFound
	}
	c := *m
	return &c, nil
}

func (r memMembershipRepo) LockByTeamAndUsers(ctx context.Context, exec repositories.SQLExecutor, teamID int, userIDs ...int) ([]*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("membership.lock"); err != nil {
		return nil, err
	}
	out := make([]*models.Membership, 0, len(userIDs))
	for _, userID := range userIDs {
		if m, ok := r.s.memberships[[2]int{teamID, userID}]; ok {
			c := *m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r memMembershipRepo) UpdateRank(ctx context.Context, exec repositories.SQLExecutor, teamID, userID, rank int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("membership.update_rank"); err != nil {
		return err
	}
	m, ok := r.s.memberships[[2]int{teamID, userID}]
	if !ok {
		return repositories.ErrMembershipNotFound
	}
	m.Rank = rank
	m.UpdatedAt = time.Now()
	return nil
}

func (r memMembershipRepo) ListLadder(ctx context.Context, exec repositories.SQLExecutor, teamID int) ([]*models.LadderEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.LadderEntry, 0)
	for _, m := range r.s.memberships {
		if m.TeamID != teamID || !m.IsActive() {
			continue
		}
		entry := &models.LadderEntry{TeamID: teamID, UserID: m.UserID, Rank: m.Rank, Role: m.Role}
		if u, ok := r.s.users[m.UserID]; ok {
			entry.Nickname = u.Nickname
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// Challenges

type memChallengeRepo struct{ s *memStore }

func (r memChallengeRepo) Create(ctx context.Context, exec repositories.SQLExecutor, challenge *models.Challenge) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("challenge.create"); err != nil {
		return err
	}
	r.s.nextID++
	challenge.ID = r.s.nextID
	challenge.CreatedAt = time.Now()
	challenge.UpdatedAt = challenge.CreatedAt
	c := *challenge
	r.s.challenges[c.ID] = &c
	return nil
}

func (r memChallengeRepo) get(id int) (*models.Challenge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("challenge.get"); err != nil {
		return nil, err
	}
	c, ok := r.s.challenges[id]
	if !ok {
		return nil, repositories.ErrChallengeNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memChallengeRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Challenge, error) {
	return r.get(id)
}

func (r memChallengeRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Challenge, error) {
	return r.get(id)
}

func (r memChallengeRepo) ListByUser(ctx context.Context, exec repositories.SQLExecutor, userID int, status *models.ChallengeStatus) ([]*models.Challenge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Challenge, 0)
	for _, c := range r.s.challenges {
		if c.ChallengerID != userID && c.OpponentID != userID && c.WitnessID != userID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memChallengeRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, from, to models.ChallengeStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.challenges[id]
	if !ok || c.Status != from {
		return repositories.ErrChallengeStatusConflict
	}
	c.Status = to
	return nil
}

func (r memChallengeRepo) Complete(ctx context.Context, exec repositories.SQLExecutor, id, teamID, winnerID, loserID int, completedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("challenge.complete"); err != nil {
		return err
	}
	c, ok := r.s.challenges[id]
	if !ok || c.Status != models.ChallengeStatusAccepted {
		return repositories.ErrChallengeStatusConflict
	}
	c.Status = models.ChallengeStatusCompleted
	if c.TeamID == nil {
		c.TeamID = &teamID
	}
	c.WinnerID = &winnerID
	c.LoserID = &loserID
	c.CompletedAt = &completedAt
	return nil
}

// Rank history

type memHistoryRepo struct{ s *memStore }

func (r memHistoryRepo) Create(ctx context.Context, exec repositories.SQLExecutor, entry *models.RankHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("history.create"); err != nil {
		return err
	}
	r.s.nextID++
	entry.ID = r.s.nextID
	entry.CreatedAt = time.Now()
	c := *entry
	r.s.history = append(r.s.history, &c)
	return nil
}

func (r memHistoryRepo) ListByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int, userID *int) ([]*models.RankHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.RankHistory, 0)
	for i := len(r.s.history) - 1; i >= 0; i-- {
		h := r.s.history[i]
		if h.TeamID != teamID || (userID != nil && h.UserID != *userID) {
			continue
		}
		c := *h
		out = append(out, &c)
	}
	return out, nil
}

func (r memHistoryRepo) ListByChallenge(ctx context.Context, exec repositories.SQLExecutor, challengeID int) ([]*models.RankHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.RankHistory, 0)
	for _, h := range r.s.history {
		if h.ChallengeID != nil && *h.ChallengeID == challengeID {
			c := *h
			out = append(out, &c)
		}
	}
	return out, nil
}

// Users and teams

type memUserRepo struct{ s *memStore }

func (r memUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

type memTeamRepo struct{ s *memStore }

func (r memTeamRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	c := *t
	return &c, nil
}

// recordingNotifier remembers every event and optionally fails all of them.
type recordingNotifier struct {
	mu        sync.Mutex
	err       error
	events    []string
	completed []models.ChallengeOutcome
	players   [][2]*models.User
	rankings  []int
}

func (n *recordingNotifier) record(event string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) NotifyChallengeCreated(ctx context.Context, challenge *models.Challenge) error {
	return n.record("challenge.created")
}

func (n *recordingNotifier) NotifyChallengeAccepted(ctx context.Context, challenge *models.Challenge) error {
	return n.record("challenge.accepted")
}

func (n *recordingNotifier) NotifyChallengeDeclined(ctx context.Context, challenge *models.Challenge) error {
	return n.record("challenge.declined")
}

func (n *recordingNotifier) NotifyChallengeCompleted(ctx context.Context, challenge *models.Challenge, winner, loser *models.User, outcome models.ChallengeOutcome) error {
	n.mu.Lock()
	n.completed = append(n.completed, outcome)
	n.players = append(n.players, [2]*models.User{winner, loser})
	n.mu.Unlock()
	return n.record("challenge.completed")
}

func (n *recordingNotifier) NotifyRankingsUpdated(ctx context.Context, teamID int) error {
	n.mu.Lock()
	n.rankings = append(n.rankings, teamID)
	n.mu.Unlock()
	return n.record("rankings.updated")
}

func (n *recordingNotifier) eventNames() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := append([]string(nil), n.events...)
	sort.Strings(out)
	return out
}
