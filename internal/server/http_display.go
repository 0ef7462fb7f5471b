package server

import "fmt"

// displayServerInfo prints endpoints and protection settings at startup.
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayEndpoints() {
	fmt.Fprintln(s.out, "Available endpoints:")
	fmt.Fprintln(s.out, "  GET    /health          - Health check (?deep=true checks models)")
	fmt.Fprintln(s.out, "  GET    /stats           - Server statistics")
	fmt.Fprintln(s.out, "  POST   /generate        - Generate tailored content")
	fmt.Fprintln(s.out, "  GET    /profile         - Stored profile")
	fmt.Fprintln(s.out, "  PUT    /profile         - Replace stored profile")
	fmt.Fprintln(s.out, "  POST   /profile/import  - Import profile from upload (?save=true)")
	fmt.Fprintln(s.out, "  GET    /jobs            - Job library")
	fmt.Fprintln(s.out, "  POST   /jobs            - Add job")
	fmt.Fprintln(s.out, "  DELETE /jobs/{id}       - Remove job")
	fmt.Fprintln(s.out, "  POST   /jobs/extract    - Extract job text from upload (?add=true)")
	fmt.Fprintln(s.out, "  POST   /render/{kind}   - Render resume, cover-letter or brief PDF")
}

func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Fprintf(s.out, "API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		return
	}
	fmt.Fprintln(s.out, "API authentication: DISABLED (no API keys configured)")
	fmt.Fprintln(s.out, "WARNING: API endpoints are publicly accessible!")
}

func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Fprintf(s.out, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
		return
	}
	fmt.Fprintln(s.out, "Request size limit: DISABLED")
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimit == nil || !s.RateLimit.Enabled {
		fmt.Fprintln(s.out, "Rate limiting: DISABLED")
		return
	}
	fmt.Fprintf(s.out, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	if s.RateLimit.ByAPIKey {
		fmt.Fprintln(s.out, "  - Per API key rate limiting enabled")
	}
	if s.RateLimit.ByIP {
		fmt.Fprintln(s.out, "  - Per IP address rate limiting enabled")
	}
}
