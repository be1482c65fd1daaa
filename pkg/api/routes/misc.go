package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

// reduce strips fields down to the basic group, adding the detailed group when ?detailed=true
func reduce(c *fiber.Ctx, value interface{}) (interface{}, error) {
	groups := []string{"basic"}
	if c.QueryBool("detailed", false) {
		groups = append(groups, "detailed")
	}

	return sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, value)
}

func sendReduced(c *fiber.Ctx, value interface{}) error {
	reduced, err := reduce(c, value)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce response",
		})
	}

	return c.JSON(reduced)
}

func sendError(c *fiber.Ctx, status int, err error) error {
	c.SendStatus(status)
	return c.JSON(fiber.Map{
		"error": err.Error(),
	})
}
