package sessionsrv

import (
	"context"

	"github.com/Abraxas-365/fateweaver/pkg/campaign"
	"github.com/Abraxas-365/fateweaver/pkg/jobx"
	"github.com/Abraxas-365/fateweaver/pkg/logx"
)

// JobTypeScheduledSnapshot is the worker job that saves a periodic
// snapshot of the campaign state.
const JobTypeScheduledSnapshot = "campaign.snapshot"

// NewSnapshotJob builds the job the scheduler enqueues each interval.
func NewSnapshotJob(queue string) jobx.Job {
	return jobx.Job{
		Type:       JobTypeScheduledSnapshot,
		Queue:      queue,
		MaxRetries: 2,
	}
}

// SnapshotJobHandler returns the worker handler for scheduled snapshots.
func SnapshotJobHandler(svc *TurnService) jobx.HandlerFunc {
	return func(ctx context.Context, job *jobx.JobInfo) error {
		snap, err := svc.CreateSnapshot(ctx, campaign.SnapshotLabelScheduled)
		if err != nil {
			return err
		}

		logx.WithFields(logx.Fields{
			"snapshot_id": snap.ID.String(),
			"job_id":      job.ID,
		}).Info("scheduled snapshot completed")
		return nil
	}
}
