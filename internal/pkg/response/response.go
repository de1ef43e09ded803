package response

import "github.com/gofiber/fiber/v2"

// Response represents a standard API response
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	// Redirect carries the route the client should navigate to when a
	// guard decision denies access (login, dashboard or KYC route).
	Redirect string `json:"redirect,omitempty"`
}

// FieldError is a single entry of a validation-error list. The first
// entry doubles as the canonical error message of the response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
	})
}

// ValidationFailed sends a 400 carrying the full field-error list. Each
// entry is surfaced individually; the first is the canonical message.
func ValidationFailed(c *fiber.Ctx, errs []FieldError) error {
	msg := "validation failed"
	if len(errs) > 0 {
		msg = errs[0].Message
	}
	return c.Status(fiber.StatusBadRequest).JSON(Response{
		Success: false,
		Error:   msg,
		Errors:  errs,
	})
}

// Denied sends a guard denial with a redirect hint for the client.
func Denied(c *fiber.Ctx, statusCode int, message, redirect string) error {
	return c.Status(statusCode).JSON(Response{
		Success:  false,
		Error:    message,
		Redirect: redirect,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}
