package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/config"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/database"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/logger"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/service"
)

// Seeds one class worth of students so a staging instance can run a full
// exam round. The identity service reads the same students table, so hashes
// must be real bcrypt.
func main() {
	var className string
	var password string
	flag.StringVar(&className, "class", "XII TKJ 2", "Class name for the seeded students")
	flag.StringVar(&password, "password", "sibentik-dev", "Plain password shared by all seeded students")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	authService := service.NewAuthService(cfg)
	hash, err := authService.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	names := []string{
		"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo",
		"Ayu Lestari", "Dodi Kusuma", "Eka Putri", "Fahri Hamzah", "Gita Savitri",
		"Hendra Gunawan", "Ika Sari", "Jamal Mirdad", "Kiki Fatmala", "Lukman Hakim",
		"Maya Septiana", "Nanda Pratama", "Oki Setiana", "Putri Dian", "Qori Maharani",
		"Rafi Ahmad", "Siska Saraswati", "Toni Setiawan", "Umi Kalsum", "Vina Panduwinata",
		"Wahyu Hidayat", "Xena Maharani", "Yudi Pratama", "Zaki Anwar", "Alifia Zahra",
		"Bagas Saputra", "Citra Kirana", "Dimas Anggara", "Elisa Novita", "Fikri Maulana",
		"Gali Rakasiwi", "Hani Hanifah", "Iqbal Ramadhan", "Jasmine Azzahra", "Kevin Sanjaya",
		"Larasati Dewi", "Miko Pambudi", "Nia Ramadhani", "Oscar Lawalata", "Puput Melati",
		"Reza Rahadian", "Sari Nila", "Tigor Siahaan", "Utari Maharani", "Vicky Prasetyo",
	}

	fmt.Printf("=== Seeding %d students into %s ===\n", len(names), className)

	successCount := 0
	for i, name := range names {
		nis := fmt.Sprintf("%05d", i+1)
		nisn := fmt.Sprintf("user%d", i+1)

		_, err := pool.Exec(ctx,
			`INSERT INTO students (nis, nisn, name, class_name, password_hash)
             VALUES ($1, $2, $3, $4, $5)
             ON CONFLICT (nis) DO NOTHING`,
			nis, nisn, name, className, hash,
		)
		if err != nil {
			fmt.Printf("Error creating student %s (NISN: %s): %v\n", name, nisn, err)
			continue
		}
		successCount++
		if (i+1)%10 == 0 {
			fmt.Printf("Created %d students...\n", i+1)
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d students.\n", successCount, len(names))
}
