package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/canvaskit/pkg/store"
	"github.com/matzehuels/canvaskit/pkg/store/storetest"
)

// TestStore runs the contract against a live server when
// CANVASKIT_TEST_MONGO holds its URI.
func TestStore(t *testing.T) {
	uri := os.Getenv("CANVASKIT_TEST_MONGO")
	if uri == "" {
		t.Skip("CANVASKIT_TEST_MONGO not set")
	}
	ctx := context.Background()
	n := 0
	storetest.Run(t, func(t *testing.T, clock store.Clock) store.Store {
		n++
		s, err := Open(ctx, Options{
			URI:        uri,
			Database:   "canvaskit_test",
			Collection: fmt.Sprintf("docs_%d_%d", time.Now().UnixNano(), n),
		})
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() {
			_ = s.coll.Drop(ctx)
			s.Close()
		})
		s.SetClock(clock)
		return s
	})
}
