// Package api exposes the chat service over HTTP.
package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const WelcomeMessage = "Welcome to the fitness assistant chatbot API!"

// Replier answers one chat turn for a user.
type Replier interface {
	Reply(ctx context.Context, userID, question string) (string, error)
}

type Server struct {
	chat   Replier
	server *http.Server
	addr   string
}

func NewServer(chat Replier, addr string) *Server {
	return &Server{chat: chat, addr: addr}
}

// Router builds the gin engine with CORS and both routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}))

	r.GET("/", s.handleRoot)
	r.POST("/chat", s.handleChat)
	return r
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Printf("Starting fitness assistant API on %s", s.addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
