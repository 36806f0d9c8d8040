package utils

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

func SendEmail(to, subject, body string) error {
	err := godotenv.Load()
	if err != nil {
		logrus.Debug("no .env file found, using environment variables directly")
	}
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("EMAIL_USER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		port,
		os.Getenv("EMAIL_USER"),
		os.Getenv("EMAIL_PASS"),
	)

	return d.DialAndSend(m)
}

// SendVerificationEmail delivers the sign-up confirmation code. Failures are
// the caller's problem to log; registration itself never fails on email.
func SendVerificationEmail(to, displayName, otp string) error {
	subject := "Confirm your BigLittle Storage account"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Thanks for signing up. Enter this code to confirm your email address:</p>
		<p><strong>%s</strong></p>
		<p>The code expires in 15 minutes.</p>
	`, displayName, otp)
	return SendEmail(to, subject, body)
}

// SendBookingConfirmation notifies a customer their unit is reserved.
func SendBookingConfirmation(to, displayName, unitNumber, facilityName, startDate string, monthlyPounds float64) error {
	subject := fmt.Sprintf("Booking confirmed: unit %s at %s", unitNumber, facilityName)
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your storage unit is booked.</p>
		<ul>
			<li><strong>Unit:</strong> %s</li>
			<li><strong>Facility:</strong> %s</li>
			<li><strong>Move-in date:</strong> %s</li>
			<li><strong>Monthly rate:</strong> £%.2f</li>
		</ul>
		<p>You can manage the booking from your dashboard.</p>
	`, displayName, unitNumber, facilityName, startDate, monthlyPounds)
	return SendEmail(to, subject, body)
}

// SendOverdueNotice reminds a customer about a missed payment.
func SendOverdueNotice(to, displayName, unitNumber string, amountPounds float64, dueDate string) error {
	subject := fmt.Sprintf("Payment overdue for unit %s", unitNumber)
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your payment of £%.2f for unit %s was due on %s and is now overdue.</p>
		<p>Please settle it from your dashboard to keep your booking active.</p>
	`, displayName, amountPounds, unitNumber, dueDate)
	return SendEmail(to, subject, body)
}
