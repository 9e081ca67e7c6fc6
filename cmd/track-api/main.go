package main

func main() {
	app := mustBootstrapTrackAPI()
	defer app.Close()

	if err := app.Run(); err != nil && !isCanceled(err) {
		panic(err)
	}
}
