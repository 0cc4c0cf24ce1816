package main

import (
	"fmt"
	"os"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/util"
	"github.com/joho/godotenv"
)

func main() {
	// best effort; the environment wins over .env and absence is normal
	godotenv.Load()

	util.LogAudit(&(util.BasicLogContext{}), util.LogAuditInput{Actor: "main()", Action: "startup", Actee: "self", Message: "Application Startup", Severity: util.INFO})
	err := createCliApp().Run(os.Args)
	if err != nil {
		util.LogAlert(&(util.BasicLogContext{}), fmt.Sprintf("Error executing CLI app: %v", err))
	}
}
