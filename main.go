package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/eid-foundation/bankid-session/cmd"
)

func main() {
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors: false,
		ForceColors:   true,
	})
	cmd.Execute()
}
