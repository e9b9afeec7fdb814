package domain

type transition struct {
	from AppointmentStatus
	to   AppointmentStatus
}

// Таблица разрешенных переходов статуса записи по ролям
var allowedTransitions = map[transition][]Role{
	{AppointmentStatusPending, AppointmentStatusConfirmed}:   {RoleDoctor},
	{AppointmentStatusPending, AppointmentStatusCanceled}:    {RoleDoctor, RolePatient},
	{AppointmentStatusConfirmed, AppointmentStatusCompleted}: {RoleDoctor},
	{AppointmentStatusConfirmed, AppointmentStatusCanceled}:  {RoleDoctor},
}

func CanTransition(role Role, from, to AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[transition{from, to}] {
		if allowed == role {
			return true
		}
	}
	return false
}

// CheckTransition проверяет переход и принадлежность записи участнику
func CheckTransition(actor Actor, appointment Appointment, to AppointmentStatus) *Rejection {
	switch actor.Role {
	case RoleDoctor:
		if appointment.DoctorID != actor.ID {
			return Reject(ReasonNotOwner).WithAppointment(appointment.ID)
		}
	case RolePatient:
		if appointment.PatientID != actor.ID {
			return Reject(ReasonNotOwner).WithAppointment(appointment.ID)
		}
	default:
		return Reject(ReasonInvalidTransition).WithAppointment(appointment.ID)
	}

	if !CanTransition(actor.Role, appointment.Status, to) {
		return Reject(ReasonInvalidTransition).WithAppointment(appointment.ID)
	}
	return nil
}
