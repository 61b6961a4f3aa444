// Command main runs the database seeder for Silence Booster.
package main

import (
	"flag"
	"log"

	"silenceboost/internal/config"
	"silenceboost/internal/database"
	"silenceboost/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	withWars := flag.Bool("wars", true, "Seed meme wars")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, %d posts, clean=%v, wars=%v\n", *numUsers, *numPosts, *shouldClean, *withWars)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(database.DB)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	users, err := s.SeedSocial(*numUsers, *numPosts)
	if err != nil {
		log.Fatalf("Social seeding failed: %v", err)
	}

	if *withWars {
		if err := s.SeedWar(users); err != nil {
			log.Fatalf("War seeding failed: %v", err)
		}
	}

	log.Println("Seeding complete")
}
