package repository

const (
	createDownloadQuery = `INSERT INTO downloads (url, platform, quality, audio_only, status)
					VALUES ($1, $2, $3, $4, $5) RETURNING *`

	getDownloadByIDQuery = `SELECT job_id, url, platform, quality, audio_only, status, progress, message, file_info, created_at, completed_at
					FROM downloads WHERE job_id = $1`

	listDownloadsQuery = `SELECT job_id, url, platform, quality, audio_only, status, progress, message, file_info, created_at, completed_at
					FROM downloads ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	countDownloadsQuery = `SELECT COUNT(job_id) FROM downloads`

	claimDownloadQuery = `UPDATE downloads SET status = 'downloading', progress = 0
					WHERE job_id = $1 AND status = 'queued' RETURNING *`

	updateProgressQuery = `UPDATE downloads SET progress = GREATEST(progress, $2)
					WHERE job_id = $1 AND status = 'downloading'`

	setFileInfoQuery = `UPDATE downloads SET file_info = $2 WHERE job_id = $1`

	completeDownloadQuery = `UPDATE downloads SET status = 'completed', progress = 100, message = $2, completed_at = now()
					WHERE job_id = $1 AND status = 'downloading'`

	// Failing is allowed from queued too: admission can strand a job there
	// when the queue write fails after the row committed.
	failDownloadQuery = `UPDATE downloads SET status = 'failed', message = $2, completed_at = now()
					WHERE job_id = $1 AND status IN ('queued', 'downloading')`

	reconcileInterruptedQuery = `UPDATE downloads SET status = 'failed', message = 'interrupted by service restart', completed_at = now()
					WHERE status = 'downloading'`

	getQueuedIDsQuery = `SELECT job_id FROM downloads WHERE status = 'queued' ORDER BY created_at ASC`

	deleteOlderThanQuery = `DELETE FROM downloads
					WHERE status IN ('completed', 'failed') AND created_at < $1 RETURNING job_id`
)
