package mailer

import (
	"fmt"
	"time"
)

// FollowUpReminderBody renders the HTML reminder mailed to an attender ahead
// of a scheduled follow-up.
func FollowUpReminderBody(attender, studentName, phone, course string, followUpAt time.Time, note string) string {
	noteBlock := ""
	if note != "" {
		noteBlock = fmt.Sprintf("<p><strong>Note:</strong> %s</p>", note)
	}

	return fmt.Sprintf(`
        <p>Hi %s,</p>
        <p>This is a reminder to follow up with:</p>
        <ul>
          <li><strong>Name:</strong> %s</li>
          <li><strong>Phone:</strong> %s</li>
          <li><strong>Course:</strong> %s</li>
          <li><strong>Follow-up Time:</strong> %s</li>
        </ul>
        %s
        <br/>
        <p>Regards,<br/>CRM System</p>
    `, attender, studentName, phone, course, followUpAt.Format("02 Jan 2006 3:04 PM"), noteBlock)
}

// FollowUpReminderSubject builds the subject line for a reminder mail.
func FollowUpReminderSubject(studentName string) string {
	return fmt.Sprintf("Follow-up Reminder: %s", studentName)
}

// OTPBody renders the HTML mail carrying a password-reset one-time code.
func OTPBody(name, otp string) string {
	return fmt.Sprintf(`
        <p>Hi %s,</p>
        <p>Your one-time code for resetting your password is:</p>
        <h2 style="letter-spacing: 4px;">%s</h2>
        <p>The code expires in 5 minutes. If you did not request a reset, you can ignore this email.</p>
        <br/>
        <p>Regards,<br/>CRM System</p>
    `, name, otp)
}
