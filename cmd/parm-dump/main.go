package main

import (
	"context"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	ctx := context.Background()
	if err := newRootCmd(logrus.StandardLogger()).ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}
