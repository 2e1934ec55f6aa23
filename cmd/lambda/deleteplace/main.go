package main

import (
	"net/http"

	cmdlambda "github.com/scrapmap/scrapmap/cmd/lambda"
	"github.com/scrapmap/scrapmap/pkg/aws"
	"github.com/scrapmap/scrapmap/pkg/server"
)

func main() {
	cmdlambda.StartHTTPHandler(func(service *aws.Service) (http.Handler, error) {
		if err := service.CheckWriteConfig(); err != nil {
			return nil, err
		}
		return server.NewDeletePlaceHandler(service), nil
	})
}
