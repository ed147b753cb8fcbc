package cli

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/medialift/medialift/internal/common"
)

func (a *App) Login(ctx context.Context) {

	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	err = a.api.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			log.Printf("Login unsuccessful: invalid email or password")
		} else {
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return
	}

	a.userName = email
	log.Printf("Login successful")
}
