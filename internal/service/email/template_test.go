package email

import (
	"context"
	"sync"
	"testing"

	"adscreen-service/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRender(t *testing.T) {
	subject, body, err := Render(queue.EmailJob{
		SubjectAr: "تمت الموافقة",
		SubjectEn: "Booking approved",
		MessageAr: "تمت الموافقة على حجزك",
		MessageEn: "Your booking <b>42</b> was approved",
	})
	require.NoError(t, err)
	assert.Equal(t, "تمت الموافقة | Booking approved", subject)
	assert.Contains(t, body, `class="ar"`)
	assert.Contains(t, body, "&lt;b&gt;42&lt;/b&gt;")
	assert.Contains(t, body, "<hr />")
}

func TestRender_EnglishOnly(t *testing.T) {
	subject, body, err := Render(queue.EmailJob{SubjectEn: "Invoice issued", MessageEn: "Pay soon"})
	require.NoError(t, err)
	assert.Equal(t, "Invoice issued", subject)
	assert.NotContains(t, body, `class="ar"`)
}

type recordingSender struct {
	wg   sync.WaitGroup
	jobs []queue.EmailJob
}

func (r *recordingSender) SendJob(_ context.Context, job queue.EmailJob) error {
	defer r.wg.Done()
	r.jobs = append(r.jobs, job)
	return nil
}

func TestAsyncSender(t *testing.T) {
	rec := &recordingSender{}
	rec.wg.Add(1)

	a := NewAsyncSender(rec, zap.NewNop())
	require.NoError(t, a.PublishEmail(context.Background(), queue.EmailJob{To: "m@example.com"}))

	rec.wg.Wait()
	require.Len(t, rec.jobs, 1)
	assert.Equal(t, "m@example.com", rec.jobs[0].To)
}
