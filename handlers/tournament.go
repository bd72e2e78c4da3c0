package handlers

import (
	"arcade-arena/middleware"
	"arcade-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService) {
	// 🔓 Public read-only projections
	app.Get("/tournaments", tournamentService.GetAllTournaments)
	app.Get("/tournaments/:id", tournamentService.GetTournamentByID)
	app.Get("/tournaments/:id/matches", tournamentService.GetTournamentMatches)

	// 🔐 Mutations need gateway-established identity
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/tournaments", tournamentService.CreateTournament)
	secured.Delete("/tournaments/:id", tournamentService.DeleteTournament)
	secured.Post("/tournaments/:id/join", tournamentService.JoinTournament)
	secured.Post("/tournaments/:id/cancel", tournamentService.CancelJoinTournament)
	secured.Post("/tournaments/:id/start", tournamentService.StartTournament)
	secured.Post("/tournaments/:id/matches/:match_id/start", tournamentService.StartTournamentMatch)
	secured.Post("/tournaments/:id/matches/:match_id/result", tournamentService.SubmitTournamentMatchResult)
}
