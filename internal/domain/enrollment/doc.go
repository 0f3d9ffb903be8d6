// Package enrollment contains the domain model for a learner's membership in
// a course. This is the core business logic of the learning hub - there are no
// external dependencies here.
//
// The package defines:
//
//   - Entities: Enrollment
//   - Value Objects: Status
//   - Repository interfaces: Repository, Cache
//
// # State machine
//
// An enrollment moves through {active, completed, cancelled, expired}:
//
//	none       → active     Enroll (course admissible, prerequisites met)
//	cancelled  → active     Re-enroll (row is reused, never duplicated)
//	expired    → active     Re-enroll
//	active     → completed  Completion cascade only, never a direct client call
//	active     → cancelled  Administrative cancellation
//	active     → expired    Expiry sweep (expires_at in the past)
//
// The (learner, course) pair is a natural key: at most one row exists per
// pair, and re-enrollment reactivates the existing row in place.
//
// # Example
//
//	enr, err := NewEnrollment(NewEnrollmentParams{
//	    ID:        uuid.New().String(),
//	    LearnerID: learnerID,
//	    CourseID:  courseID,
//	})
//	if err != nil {
//	    return err
//	}
//	// later, when the cascade finds every published lesson completed:
//	if enr.Complete(time.Now().UTC()) {
//	    bus.Publish(shared.NewCourseCompletedEvent(...))
//	}
package enrollment
