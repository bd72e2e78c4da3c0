package services

import (
	"log"
	"sort"
	"sync"
	"time"

	"arcade-arena/models"
	"arcade-arena/room"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ResultSink is the durable-storage boundary. Implementations must be safe
// for concurrent use; callers treat failures as logged-and-ignored because
// the in-memory bracket stays authoritative for live play.
type ResultSink interface {
	SubmitMatch(rec models.MatchRecord) error
	SaveTournament(rec models.TournamentRecord, matches []models.MatchRecord) error
}

// Archiver optionally receives a completed tournament for cold storage.
type Archiver interface {
	ArchiveTournament(rec models.TournamentRecord, matches []models.MatchRecord) error
}

// TournamentService owns the in-memory tournament registry and all bracket
// mutations. One mutex serializes every mutation, which satisfies the
// per-tournament single-writer requirement with room to spare at this scale.
type TournamentService struct {
	mu          sync.RWMutex
	tournaments map[string]*models.Tournament

	sink     ResultSink
	archiver Archiver
}

func NewTournamentService(sink ResultSink, archiver Archiver) *TournamentService {
	return &TournamentService{
		tournaments: make(map[string]*models.Tournament),
		sink:        sink,
		archiver:    archiver,
	}
}

// Create registers a new tournament in waiting state.
func (s *TournamentService) Create(name, hostID string, opts models.GameOptions, maxPlayers int) *models.Tournament {
	if maxPlayers <= 0 {
		maxPlayers = models.DefaultMaxPlayers
	}
	t := &models.Tournament{
		ID:         uuid.NewString(),
		Name:       name,
		Slug:       slug.Make(name),
		HostID:     hostID,
		MaxPlayers: maxPlayers,
		Status:     models.TournamentWaiting,
		Options:    opts,
		CreatedAt:  time.Now(),
	}
	s.mu.Lock()
	s.tournaments[t.ID] = t
	s.mu.Unlock()
	return t
}

// Join appends a player. Fails on absent tournament, full roster, duplicate
// user, or a tournament already under way. All checks happen before any write.
func (s *TournamentService) Join(id, userID, alias string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tournaments[id]
	if !ok {
		return false
	}
	if t.Status != models.TournamentWaiting && t.Status != models.TournamentReady {
		return false
	}
	if len(t.Players) >= t.MaxPlayers || t.HasPlayer(userID) {
		return false
	}
	t.Players = append(t.Players, models.Player{UserID: userID, Alias: alias})
	if len(t.Players) == t.MaxPlayers {
		t.Status = models.TournamentReady
	}
	return true
}

// CancelJoin removes a player before the tournament starts.
func (s *TournamentService) CancelJoin(id, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tournaments[id]
	if !ok {
		return false
	}
	if t.Status != models.TournamentWaiting && t.Status != models.TournamentReady {
		return false
	}
	for i, p := range t.Players {
		if p.UserID == userID {
			t.Players = append(t.Players[:i], t.Players[i+1:]...)
			if len(t.Players) < t.MaxPlayers {
				t.Status = models.TournamentWaiting
			}
			return true
		}
	}
	return false
}

// Start moves a full tournament into play and generates the two semifinal
// matches, pairing roster players in join order.
func (s *TournamentService) Start(id, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tournaments[id]
	if !ok || t.HostID != userID {
		return false
	}
	if t.Status != models.TournamentWaiting && t.Status != models.TournamentReady {
		return false
	}
	if len(t.Players) != t.MaxPlayers {
		return false
	}

	t.Status = models.TournamentInProgress
	for i := 0; i+1 < len(t.Players); i += 2 {
		t.Matches = append(t.Matches, &models.Match{
			ID:      uuid.NewString(),
			Round:   models.RoundSemifinal,
			Player1: t.Players[i],
			Player2: t.Players[i+1],
			Status:  models.MatchPending,
			Options: t.Options,
		})
	}
	return true
}

// StartMatch hands a pending bracket match over to a live room.
func (s *TournamentService) StartMatch(tournamentID, matchID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tournaments[tournamentID]
	if !ok {
		return false
	}
	m := t.FindMatch(matchID)
	if m == nil || m.Status != models.MatchPending {
		return false
	}
	m.Status = models.MatchInProgress
	return true
}

// SubmitResult records a terminal match result and advances the bracket:
// completing both semifinals synthesizes the finals and third-place matches
// exactly once; completing both of those finishes the tournament.
func (s *TournamentService) SubmitResult(tournamentID, matchID, winnerID string, score models.MatchScore) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tournaments[tournamentID]
	if !ok {
		return false
	}
	m := t.FindMatch(matchID)
	if m == nil || m.Status != models.MatchInProgress {
		return false
	}
	if winnerID != m.Player1.UserID && winnerID != m.Player2.UserID {
		return false
	}

	sc := score
	m.Score = &sc
	m.WinnerID = winnerID
	m.Status = models.MatchCompleted

	s.generateFinalsLocked(t)
	s.checkCompletionLocked(t)
	return true
}

// generateFinalsLocked creates the finals and third-place matches once both
// semifinals are done. Idempotent: a second call is a no-op.
func (s *TournamentService) generateFinalsLocked(t *models.Tournament) {
	if t.MatchByRound(models.RoundFinal) != nil {
		return
	}
	var semis []*models.Match
	for _, m := range t.Matches {
		if m.Round == models.RoundSemifinal {
			if m.Status != models.MatchCompleted {
				return
			}
			semis = append(semis, m)
		}
	}
	if len(semis) != 2 {
		return
	}

	winner := func(m *models.Match) models.Player {
		if m.WinnerID == m.Player1.UserID {
			return m.Player1
		}
		return m.Player2
	}
	loser := func(m *models.Match) models.Player {
		if m.WinnerID == m.Player1.UserID {
			return m.Player2
		}
		return m.Player1
	}

	t.Matches = append(t.Matches,
		&models.Match{
			ID:      uuid.NewString(),
			Round:   models.RoundFinal,
			Player1: winner(semis[0]),
			Player2: winner(semis[1]),
			Status:  models.MatchPending,
			Options: t.Options,
		},
		&models.Match{
			ID:      uuid.NewString(),
			Round:   models.RoundThirdPlace,
			Player1: loser(semis[0]),
			Player2: loser(semis[1]),
			Status:  models.MatchPending,
			Options: t.Options,
		},
	)
}

// checkCompletionLocked finishes the tournament once the finals and the
// third-place match are both completed. The champion is whatever the finals
// match recorded as its winner — never recomputed from raw scores.
func (s *TournamentService) checkCompletionLocked(t *models.Tournament) {
	if t.Status != models.TournamentInProgress {
		return
	}
	final := t.MatchByRound(models.RoundFinal)
	third := t.MatchByRound(models.RoundThirdPlace)
	if final == nil || third == nil {
		return
	}
	if final.Status != models.MatchCompleted || third.Status != models.MatchCompleted {
		return
	}

	now := time.Now()
	t.Status = models.TournamentCompleted
	t.ChampionID = final.WinnerID
	t.CompletedAt = &now

	rec, matches := buildRecords(t)
	go s.persistCompleted(rec, matches)
}

// persistCompleted is fire-and-forget: failures are logged and the
// in-memory state is not rolled back.
func (s *TournamentService) persistCompleted(rec models.TournamentRecord, matches []models.MatchRecord) {
	if s.sink != nil {
		if err := s.sink.SaveTournament(rec, matches); err != nil {
			log.Printf("⚠️ [Tournament %s] durable save failed: %v", rec.ID, err)
		}
	}
	if s.archiver != nil {
		if err := s.archiver.ArchiveTournament(rec, matches); err != nil {
			log.Printf("⚠️ [Tournament %s] archive failed: %v", rec.ID, err)
		}
	}
}

func buildRecords(t *models.Tournament) (models.TournamentRecord, []models.MatchRecord) {
	rec := models.TournamentRecord{
		ID:         t.ID,
		Name:       t.Name,
		Slug:       t.Slug,
		HostID:     t.HostID,
		ChampionID: t.ChampionID,
		BallSpeed:  t.Options.BallSpeed,
		BallRadius: t.Options.BallRadius,
		StartedAt:  t.CreatedAt,
	}
	var matches []models.MatchRecord
	for _, m := range t.Matches {
		if m.Status != models.MatchCompleted {
			continue
		}
		mr := models.MatchRecord{
			ID:           m.ID,
			TournamentID: &t.ID,
			Round:        m.Round,
			LeftUserID:   m.Player1.UserID,
			LeftAlias:    m.Player1.Alias,
			RightUserID:  m.Player2.UserID,
			RightAlias:   m.Player2.Alias,
			WinnerID:     m.WinnerID,
			BallSpeed:    m.Options.BallSpeed,
			BallRadius:   m.Options.BallRadius,
		}
		if m.Score != nil {
			mr.LeftScore = m.Score.Left
			mr.RightScore = m.Score.Right
		}
		matches = append(matches, mr)
	}
	return rec, matches
}

// ReportResult is the hand-off from a live room (room.ResultReporter).
// Bracket advancement only applies when the room carried tournament
// linkage; every finished room is recorded through the sink either way.
func (s *TournamentService) ReportResult(res room.Result) {
	if res.TournamentID != "" {
		if ok := s.SubmitResult(res.TournamentID, res.MatchID, res.WinnerID,
			models.MatchScore{Left: res.LeftScore, Right: res.RightScore}); !ok {
			log.Printf("⚠️ [Room %s] bracket rejected result for match %s", res.RoomKey, res.MatchID)
		}
	}

	rec := matchRecordFromResult(res)
	if s.sink != nil {
		if err := s.sink.SubmitMatch(rec); err != nil {
			log.Printf("⚠️ [Room %s] sink submit failed: %v", res.RoomKey, err)
		}
	}
}

func matchRecordFromResult(res room.Result) models.MatchRecord {
	id := res.MatchID
	if id == "" {
		id = uuid.NewString()
	}
	rec := models.MatchRecord{
		ID:          id,
		LeftUserID:  res.LeftPlayer.UserID,
		LeftAlias:   res.LeftPlayer.Alias,
		RightUserID: res.RightPlayer.UserID,
		RightAlias:  res.RightPlayer.Alias,
		LeftScore:   res.LeftScore,
		RightScore:  res.RightScore,
		WinnerID:    res.WinnerID,
		Forfeit:     res.Forfeit,
		BallSpeed:   res.Config.BallSpeed,
		BallRadius:  res.Config.BallRadius,
	}
	if res.TournamentID != "" {
		tid := res.TournamentID
		rec.TournamentID = &tid
	}
	for _, ev := range res.ScoreLogs {
		rec.ScoreLogs = append(rec.ScoreLogs, models.ScoreLog{
			ID:            uuid.NewString(),
			MatchRecordID: id,
			Sequence:      ev.Sequence,
			ScorerSide:    ev.ScorerSide,
			LeftScore:     ev.LeftScore,
			RightScore:    ev.RightScore,
			ElapsedSec:    ev.ElapsedSec,
		})
	}
	return rec
}

// Get returns a point-in-time copy of one tournament.
func (s *TournamentService) Get(id string) (models.Tournament, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tournaments[id]
	if !ok {
		return models.Tournament{}, false
	}
	return snapshotTournament(t), true
}

// Matches returns copies of a tournament's bracket matches.
func (s *TournamentService) Matches(id string) ([]models.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tournaments[id]
	if !ok {
		return nil, false
	}
	out := make([]models.Match, 0, len(t.Matches))
	for _, m := range t.Matches {
		out = append(out, snapshotMatch(m))
	}
	return out, true
}

// List returns open tournaments: completed ones are excluded, joinable
// (waiting/ready) sort ahead of in_progress, newest first on ties.
func (s *TournamentService) List() []models.MiniTournament {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MiniTournament, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		if t.Status == models.TournamentCompleted {
			continue
		}
		out = append(out, models.MiniTournament{
			ID:         t.ID,
			Name:       t.Name,
			Slug:       t.Slug,
			HostID:     t.HostID,
			Status:     t.Status,
			Players:    len(t.Players),
			MaxPlayers: t.MaxPlayers,
			CreatedAt:  t.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		gi, gj := listGroup(out[i].Status), listGroup(out[j].Status)
		if gi != gj {
			return gi < gj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func listGroup(status string) int {
	if status == models.TournamentInProgress {
		return 1
	}
	return 0
}

// Delete drops a tournament from memory; host only.
func (s *TournamentService) Delete(id, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok || t.HostID != userID {
		return false
	}
	delete(s.tournaments, id)
	return true
}

// Exists reports presence without copying (404 vs 400 at the HTTP layer).
func (s *TournamentService) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tournaments[id]
	return ok
}

// evictCompleted drops completed tournaments older than the retention
// window; the registry sweep scheduler calls this.
func (s *TournamentService) evictCompleted(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	cutoff := time.Now().Add(-olderThan)
	for id, t := range s.tournaments {
		if t.Status == models.TournamentCompleted && t.CompletedAt != nil && t.CompletedAt.Before(cutoff) {
			delete(s.tournaments, id)
			n++
		}
	}
	return n
}

func snapshotTournament(t *models.Tournament) models.Tournament {
	cp := *t
	cp.Players = append([]models.Player(nil), t.Players...)
	cp.Matches = make([]*models.Match, 0, len(t.Matches))
	for _, m := range t.Matches {
		mc := snapshotMatch(m)
		cp.Matches = append(cp.Matches, &mc)
	}
	return cp
}

func snapshotMatch(m *models.Match) models.Match {
	cp := *m
	if m.Score != nil {
		sc := *m.Score
		cp.Score = &sc
	}
	return cp
}
