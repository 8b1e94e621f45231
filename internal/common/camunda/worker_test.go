package camunda

import (
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"

	"loan-wizard/internal/common/observability"
)

func TestInstrument_CallsHandler(t *testing.T) {
	tests := []struct {
		name string
		obs  *observability.Observability
	}{
		{"without observability", nil},
		{"with observability", observability.NewUnexported("camunda-test")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got entities.Job
			calls := 0
			h := Instrument("test-task", tt.obs, func(_ worker.JobClient, job entities.Job) {
				calls++
				got = job
			})

			h(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: "test-task"}})

			assert.Equal(t, 1, calls)
			assert.Equal(t, int64(42), got.Key)
		})
	}
}
