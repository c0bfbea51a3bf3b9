package server

import "github.com/inhies/go-bytesize"

type Option func(s *Server)

func WithMaxUpload(max bytesize.ByteSize) Option {
	return func(s *Server) {
		s.maxUpload = max
	}
}
