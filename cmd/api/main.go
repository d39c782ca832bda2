package main

import (
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"

	"stylistapi/controllers"
	"stylistapi/services"
)

func main() {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              services.GetEnv("SENTRY_DSN", ""),
		Environment:      services.GetEnv("ENV", "local"),
		Release:          "stylistapi@1.0.0",
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	pool := services.NewCredentialPool(services.GetEnv("GEMINI_API_KEYS", ""))
	if pool.Size() == 0 {
		// keep serving, model calls answer with a service-unavailable error until configured
		fmt.Println("GEMINI_API_KEYS is not set, model calls will fail until it is configured")
		sentry.CaptureMessage("GEMINI_API_KEYS is not set")
	}

	stylist := services.NewGoogleStylistService(pool, services.NewOpenMeteoService())
	if fallback := services.ParseModelFallback(services.GetEnv("GEMINI_MODEL_FALLBACK", "")); len(fallback) > 0 {
		stylist.Fallback = fallback
	}

	e := controllers.SetupServer(stylist)
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

	log.Fatal(e.Start(":" + services.GetEnv("PORT", "8000")))
}
