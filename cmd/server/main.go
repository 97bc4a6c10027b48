package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/voxkeeper/internal/flagx"
	"github.com/dmitrijs2005/voxkeeper/internal/server"
	"github.com/dmitrijs2005/voxkeeper/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx, flagx.InteractiveFlag()); err != nil {
		log.Fatalf("%v", err)
	}

}
