package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/awesomegic/gicbank/internal/account"
	"github.com/awesomegic/gicbank/internal/statement"
)

// RegisterAccountRoutes wires transaction, balance and statement endpoints.
func RegisterAccountRoutes(r fiber.Router, accounts *account.Handler, statements *statement.Handler) {
	group := r.Group("/accounts/:accountId")
	group.Post("/transactions", accounts.Record)
	group.Get("/transactions", accounts.Transactions)
	group.Get("/balance", accounts.Balance)
	group.Get("/statements/:month", statements.Get)
}
