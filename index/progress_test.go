package index

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	t.Run("reports at interval", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProgress(&buf, 100, 50)

		p.Add(10)
		assert.Empty(t, buf.String(), "below interval")

		p.Add(40)
		assert.Contains(t, buf.String(), "50/100")
		assert.Contains(t, buf.String(), "50.0%")
	})

	t.Run("done prints total and newline", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProgress(&buf, 10, 100)
		p.Add(3)
		p.Done()
		assert.Contains(t, buf.String(), "10/10")
		assert.Contains(t, buf.String(), "\n")
	})

	t.Run("caps at total", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProgress(&buf, 10, 1)
		p.Add(25)
		assert.Contains(t, buf.String(), "10/10")
	})

	t.Run("zero total", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProgress(&buf, 0, 1)
		p.Done()
		assert.Contains(t, buf.String(), "0/0")
	})

	t.Run("concurrent adds", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProgress(&buf, 1000, 100)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					p.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Contains(t, buf.String(), "1000/1000")
	})
}
