package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"fieldforce.com/fieldforce/config"
	"fieldforce.com/fieldforce/fieldforce/store"
	"fieldforce.com/fieldforce/security"
)

// createtoken issues an identity token for an existing profile.
func main() {
	userID := flag.String("user", "", "profile id")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to auth.tokenTtl)")
	flag.Parse()

	if *userID == "" {
		log.Fatal("usage: createtoken -user <profile id> [-ttl 24h]")
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}
	dm, err := cfg.OpenDatabase()
	if err != nil {
		log.Fatal(err)
	}
	defer dm.Close()

	profile, err := store.NewProfileStore(dm).Find(context.Background(), *userID)
	if err != nil {
		log.Fatal(err)
	}
	if profile == nil {
		log.Fatalf("profile %s not found", *userID)
	}

	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}
	token, err := security.CreateIdentityToken(profile, cfg.Auth.SigningSecret, cfg.Auth.Issuer, lifetime)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
