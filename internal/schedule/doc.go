// Package schedule реализует периодический запуск tracks и
// orchestrators по cron-выражениям.
//
// Scheduler держит набор записей (track или orchestrator плюс
// шаблонный вход) и на каждый тик cron запускает соответствующий
// движок с глубокой копией входа — тики не делят состояние.
//
// Использование:
//
//	sched := schedule.New(schedule.Config{
//	    Runner: runner,
//	    Logger: logger,
//	})
//
//	if err := sched.AddTrack("*/5 * * * *", heartbeat, input); err != nil {
//	    return err
//	}
//
//	sched.Start()
//	defer sched.Stop()
package schedule
