package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.GET("/api/v1/plans", s.listPlans)
	s.router.POST("/api/v1/payments/intents", s.createIntent)
	s.router.GET("/api/v1/payments/intents/:id", s.getIntent)
	s.router.POST("/api/v1/payments/verify/:id", s.verify)
}
