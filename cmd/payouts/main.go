package main

import "github.com/meal-mate-devs/payouts/internal/app"

func main() {
	app.Start()
}
