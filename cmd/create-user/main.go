package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/brightclass/brightclass-backend/internal/config"
	"github.com/brightclass/brightclass-backend/internal/database"
	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/brightclass/brightclass-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")

	// Role
	fmt.Print("Role (teacher/student): ")
	role, _ := reader.ReadString('\n')
	role = strings.TrimSpace(strings.ToLower(role))
	if role != "teacher" && role != "student" {
		fmt.Println("Error: Role must be 'teacher' or 'student'")
		return
	}

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Grade level, students only
	gradeLevel := ""
	if role == "student" {
		fmt.Print("Enter Grade Level (e.g. 8): ")
		gradeLevel, _ = reader.ReadString('\n')
		gradeLevel = strings.TrimSpace(gradeLevel)
		if gradeLevel == "" {
			fmt.Println("Error: Grade level is required for students")
			return
		}
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	if role == "teacher" {
		teacher := &model.Teacher{
			Name:         name,
			Email:        email,
			PasswordHash: string(hashedPassword),
		}
		if err := users.CreateTeacher(ctx, teacher); err != nil {
			log.Fatal().Err(err).Msg("Failed to create teacher")
		}
		fmt.Printf("\nSuccess! Teacher '%s' (%s) created with ID: %d\n", teacher.Name, teacher.Email, teacher.ID)
		return
	}

	student := &model.Student{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		GradeLevel:   gradeLevel,
	}
	if err := users.CreateStudent(ctx, student); err != nil {
		log.Fatal().Err(err).Msg("Failed to create student")
	}
	fmt.Printf("\nSuccess! Student '%s' (%s, grade %s) created with ID: %d\n",
		student.Name, student.Email, student.GradeLevel, student.ID)
}
