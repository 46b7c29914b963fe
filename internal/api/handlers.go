package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"fitness-chatter/internal/chat"
	"fitness-chatter/internal/history"
)

type chatRequest struct {
	UserID   *string `json:"user_id" binding:"required"`
	Question *string `json:"question" binding:"required"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// fieldError is one entry of a 422 body: {"detail": [fieldError...]}.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": WelcomeMessage})
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationDetails(err)})
		return
	}

	reply, err := s.chat.Reply(c.Request.Context(), *req.UserID, *req.Question)
	if err != nil {
		status := statusFor(err)
		log.Printf("chat turn for %s failed (%d): %v", *req.UserID, status, err)
		c.JSON(status, gin.H{"detail": http.StatusText(status)})
		return
	}
	c.JSON(http.StatusOK, chatResponse{Response: reply})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, history.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, chat.ErrCompletion):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func validationDetails(err error) []fieldError {
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
		synErr  *json.SyntaxError
	)
	switch {
	case errors.As(err, &verrs):
		out := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fieldError{
				Loc:  []string{"body", jsonName(fe.Field())},
				Msg:  "Field required",
				Type: "missing",
			})
		}
		return out
	case errors.As(err, &typeErr):
		return []fieldError{{
			Loc:  []string{"body", typeErr.Field},
			Msg:  "Input should be a valid string",
			Type: "string_type",
		}}
	case errors.As(err, &synErr):
		return []fieldError{{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"}}
	default:
		return []fieldError{{Loc: []string{"body"}, Msg: err.Error(), Type: "invalid"}}
	}
}

func jsonName(field string) string {
	switch field {
	case "UserID":
		return "user_id"
	case "Question":
		return "question"
	default:
		return strings.ToLower(field)
	}
}
