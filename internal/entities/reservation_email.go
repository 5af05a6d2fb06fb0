package entities

type ReservationEmailData struct {
	UserName        string
	ReservationCode string
	ServiceName     string
	DateFormatted   string
	StartFormatted  string
	CurrentYear     int
}
