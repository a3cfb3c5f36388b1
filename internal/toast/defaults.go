package toast

import "github.com/Aldiyar2201/Visitor_Manager/internal/models"

// Info builds a toast with the standard duration.
func Info(title, message string) Toast {
	return Toast{Type: models.NotificationTypeInfo, Title: title, Message: message, Duration: DefaultDuration}
}

// Success builds a toast with the standard duration.
func Success(title, message string) Toast {
	return Toast{Type: models.NotificationTypeSuccess, Title: title, Message: message, Duration: DefaultDuration}
}

// Warning builds a toast with the longer warning duration.
func Warning(title, message string) Toast {
	return Toast{Type: models.NotificationTypeWarning, Title: title, Message: message, Duration: WarningDuration}
}

// Error builds a persistent toast: errors stay until dismissed.
func Error(title, message string) Toast {
	return Toast{Type: models.NotificationTypeError, Title: title, Message: message, Persistent: true}
}

// PromiseMessages are the three texts shown over the life of a Promise
// toast.
type PromiseMessages struct {
	Loading string
	Success string
	Failure string
}

// Promise shows a persistent loading toast while op runs, then replaces it
// with a success or error toast depending on the outcome. The operation's
// error is returned unchanged so callers can still act on it.
func Promise(q *Queue, msgs PromiseMessages, op func() error) error {
	loadingID := q.Add(Toast{
		Type:       models.NotificationTypeInfo,
		Title:      msgs.Loading,
		Persistent: true,
	})

	err := op()
	q.Remove(loadingID)

	if err != nil {
		q.Add(Error(msgs.Failure, err.Error()))
		return err
	}
	q.Add(Success(msgs.Success, ""))
	return nil
}
