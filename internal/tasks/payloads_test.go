package tasks_test

import (
	"encoding/json"
	"receipts/internal/tasks"
	"time"

	"github.com/hibiken/asynq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Payloads", func() {
	It("creates a poll task for the configured table", func() {
		task, err := tasks.NewPollRecordsTask(nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(task.Type()).To(Equal(tasks.TypeTaskPollRecords))

		var payload tasks.PollRecordsPayload
		Expect(json.Unmarshal(task.Payload(), &payload)).To(Succeed())
		Expect(payload.BaseID).To(BeNil())
		Expect(payload.TableID).To(BeNil())
	})

	Describe("PollRecordsScheduleOptions", func() {
		uniqueTTL := func(opts []asynq.Option) any {
			for _, opt := range opts {
				if opt.Type() == asynq.UniqueOpt {
					return opt.Value()
				}
			}
			return nil
		}

		It("holds the uniqueness lock for one interval", func() {
			opts := tasks.PollRecordsScheduleOptions(45 * time.Second)
			Expect(uniqueTTL(opts)).To(Equal(45 * time.Second))
		})

		It("never asks for a lock shorter than a second", func() {
			opts := tasks.PollRecordsScheduleOptions(200 * time.Millisecond)
			Expect(uniqueTTL(opts)).To(Equal(time.Second))
		})
	})
})
