package handlers

import (
	"errors"
	"strconv"

	"produtoapi/internal/models"
	"produtoapi/internal/repositories"
	"produtoapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProdutoHandler handles HTTP requests for produtos.
type ProdutoHandler struct {
	service *services.ProdutoService
}

// NewProdutoHandler creates a new ProdutoHandler.
func NewProdutoHandler(service *services.ProdutoService) *ProdutoHandler {
	return &ProdutoHandler{
		service: service,
	}
}

// RegisterRoutes registers the produto routes under router.
func (h *ProdutoHandler) RegisterRoutes(router fiber.Router) {
	produtoRoutes := router.Group("/produtos")
	produtoRoutes.Get("/", h.HandleList)
	produtoRoutes.Get("/:id", h.HandleGet)
	produtoRoutes.Post("/", h.HandleCreate)
	produtoRoutes.Put("/:id", h.HandleUpdate)
	produtoRoutes.Delete("/:id", h.HandleDelete)
}

// HandleList returns every produto.
func (h *ProdutoHandler) HandleList(c *fiber.Ctx) error {
	produtos, err := h.service.List()
	if err != nil {
		return err
	}
	if produtos == nil {
		produtos = []models.Produto{}
	}
	return c.JSON(produtos)
}

// HandleGet returns one produto, or 404 with an empty body.
func (h *ProdutoHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	produto, err := h.service.Get(id)
	if err != nil {
		return notFoundOr(c, err)
	}
	return c.JSON(produto)
}

// HandleCreate stores the produto in the body and returns it with its new ID.
func (h *ProdutoHandler) HandleCreate(c *fiber.Ctx) error {
	var produto models.Produto
	if err := parseBody(c, &produto); err != nil {
		return err
	}

	if err := h.service.Create(&produto); err != nil {
		return err
	}
	return c.JSON(produto)
}

// HandleUpdate replaces the produto at :id with the body. The ID in the body is ignored.
func (h *ProdutoHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var produto models.Produto
	if err := parseBody(c, &produto); err != nil {
		return err
	}

	if err := h.service.Update(id, &produto); err != nil {
		return notFoundOr(c, err)
	}
	return c.JSON(produto)
}

// HandleDelete removes the produto at :id and answers 204.
func (h *ProdutoHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(id); err != nil {
		return notFoundOr(c, err)
	}
	return emptyResponse(c, fiber.StatusNoContent)
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "id must be an integer")
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, produto *models.Produto) error {
	if err := c.BodyParser(produto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	return nil
}

// notFoundOr answers 404 with no body for a missing produto and hands any
// other error to the app error handler.
func notFoundOr(c *fiber.Ctx, err error) error {
	if errors.Is(err, repositories.ErrProdutoNotFound) {
		return emptyResponse(c, fiber.StatusNotFound)
	}
	return err
}

// emptyResponse sets status without a body. c.SendStatus would write the status text.
func emptyResponse(c *fiber.Ctx, status int) error {
	c.Status(status)
	c.Response().ResetBody()
	return nil
}
