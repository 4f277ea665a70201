package relay

// Option is a functional option for the server.
type Option func(*Server)

// Version sets the version of the server.
func Version(v string) Option {
	return func(s *Server) { s.version = v }
}

// Debug makes the server echo rebuilt documents back
// instead of forwarding them upstream.
func Debug() Option {
	return func(s *Server) { s.debug = true }
}

// Maybe conditionally applies the given option.
func Maybe(apply bool, opt Option) Option {
	if !apply {
		return func(*Server) {}
	}
	return opt
}
