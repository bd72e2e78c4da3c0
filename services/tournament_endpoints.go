package services

import (
	"arcade-arena/models"

	"github.com/gofiber/fiber/v2"
)

// Fiber endpoints wrapping the core bracket operations 1:1. Identity comes
// from the gateway headers (middleware.UserContextMiddleware); every
// precondition failure maps to a 4xx with no partial mutation.

type createTournamentRequest struct {
	Name       string  `json:"name"`
	BallSpeed  float64 `json:"ball_speed"`
	BallRadius float64 `json:"ball_radius"`
	MaxPlayers int     `json:"max_players"`
}

type joinTournamentRequest struct {
	Alias string `json:"alias"`
}

type submitResultRequest struct {
	WinnerID string            `json:"winner_id"`
	Score    models.MatchScore `json:"score"`
}

func userID(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}

func (s *TournamentService) CreateTournament(c *fiber.Ctx) error {
	var req createTournamentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}
	host := userID(c)
	if host == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}
	t := s.Create(req.Name, host, models.GameOptions{
		BallSpeed:  req.BallSpeed,
		BallRadius: req.BallRadius,
	}, req.MaxPlayers)
	return c.Status(201).JSON(t)
}

func (s *TournamentService) GetAllTournaments(c *fiber.Ctx) error {
	return c.JSON(s.List())
}

func (s *TournamentService) GetTournamentByID(c *fiber.Ctx) error {
	t, ok := s.Get(c.Params("id"))
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	return c.JSON(t)
}

func (s *TournamentService) JoinTournament(c *fiber.Ctx) error {
	var req joinTournamentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	id := c.Params("id")
	if !s.Exists(id) {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	alias := req.Alias
	if alias == "" {
		if v, ok := c.Locals("user_alias").(string); ok {
			alias = v
		}
	}
	if !s.Join(id, userID(c), alias) {
		return c.Status(400).JSON(fiber.Map{"error": "cannot join: roster full, duplicate, or already started"})
	}
	return c.JSON(fiber.Map{"joined": true})
}

func (s *TournamentService) CancelJoinTournament(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.Exists(id) {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	if !s.CancelJoin(id, userID(c)) {
		return c.Status(400).JSON(fiber.Map{"error": "not joined or tournament already started"})
	}
	return c.JSON(fiber.Map{"cancelled": true})
}

func (s *TournamentService) StartTournament(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.Exists(id) {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	if !s.Start(id, userID(c)) {
		return c.Status(400).JSON(fiber.Map{"error": "only the host can start a full tournament"})
	}
	t, _ := s.Get(id)
	return c.JSON(t)
}

func (s *TournamentService) GetTournamentMatches(c *fiber.Ctx) error {
	matches, ok := s.Matches(c.Params("id"))
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	return c.JSON(matches)
}

func (s *TournamentService) StartTournamentMatch(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.Exists(id) {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	if !s.StartMatch(id, c.Params("match_id")) {
		return c.Status(400).JSON(fiber.Map{"error": "match missing or not pending"})
	}
	return c.JSON(fiber.Map{"started": true})
}

func (s *TournamentService) SubmitTournamentMatchResult(c *fiber.Ctx) error {
	var req submitResultRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	id := c.Params("id")
	if !s.Exists(id) {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	if !s.SubmitResult(id, c.Params("match_id"), req.WinnerID, req.Score) {
		return c.Status(400).JSON(fiber.Map{"error": "match not in progress or winner not a participant"})
	}
	return c.JSON(fiber.Map{"recorded": true})
}

func (s *TournamentService) DeleteTournament(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.Exists(id) {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	if !s.Delete(id, userID(c)) {
		return c.Status(403).JSON(fiber.Map{"error": "only the host can delete a tournament"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}
