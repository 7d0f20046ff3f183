package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
)

func HandleIndex(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{
		"Flash": flash.Get(c),
	})
}
