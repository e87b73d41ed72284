package catscope

import (
	"github.com/noriah/catscope/scope"
	"github.com/noriah/catscope/shm"
)

// Dialer connects to producer segments in a directory.
type Dialer struct {
	dir string
}

// NewDialer returns a dialer for segments in dir. An empty dir means
// shm.DefaultDir.
func NewDialer(dir string) *Dialer {
	if dir == "" {
		dir = shm.DefaultDir()
	}
	return &Dialer{dir: dir}
}

// Connect maps the segment for endpoint. It does not fail: a missing segment
// gives an invalid connection.
func (d *Dialer) Connect(endpoint int) scope.Conn {
	return conn{shm.Connect(shm.Path(d.dir, endpoint))}
}

type conn struct {
	*shm.Client
}

func (c conn) ReaderFor(index int) scope.Reader {
	return c.Client.ReaderFor(index)
}
