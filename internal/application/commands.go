package application

type OpenAccountCommand struct {
	HolderName     string
	InitialBalance float64
}
