package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/chisomo-phiri/studyhub/internal/api/services"
	"github.com/chisomo-phiri/studyhub/internal/config"
	"github.com/chisomo-phiri/studyhub/internal/models"
	"github.com/chisomo-phiri/studyhub/internal/utils"
)

// POST /api/v1/auth/sign-up
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONResponse(w, http.StatusMethodNotAllowed, utils.Payload{
			Success: false,
			Message: "Method not allowed",
		})
		return
	}

	type Input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var input Input

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	if input.Email == "" || input.Username == "" || input.Password == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	// Check if username already exists
	var existingUser models.User
	if err := h.DB.Where("username = ?", input.Username).First(&existingUser).Error; err == nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Username is already taken",
		})
		return
	}

	// Check if email already exists
	err := h.DB.Where("email = ?", input.Email).First(&existingUser).Error

	switch err {
	case nil: // email exists
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "User already exists with this email",
		})
		return

	case gorm.ErrRecordNotFound: // new user, create account
		hashedPassword, hashErr := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
				Success: false,
				Message: "Failed to hash password",
			})
			return
		}

		newUser := models.User{
			ID:       uuid.New(),
			Username: input.Username,
			Email:    input.Email,
			Password: string(hashedPassword),
		}

		if createErr := h.DB.Create(&newUser).Error; createErr != nil {
			utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
				Success: false,
				Message: "Database insert failed",
			})
			return
		}

	default: // some other DB error
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database query failed",
		})
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "User registered successfully",
	})
}

// JWT Claims struct
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func signToken(user models.User, secret string, expiration time.Time) (string, error) {
	claims := &Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// POST /api/v1/auth/login
func (h *Handler) LoginUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONResponse(w, http.StatusMethodNotAllowed, utils.Payload{
			Success: false,
			Message: "Method not allowed",
		})
		return
	}

	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	if input.Username == "" || input.Password == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	var user models.User
	err := h.DB.Where("username = ?", input.Username).First(&user).Error
	switch err {
	case nil:
		// user found
	case gorm.ErrRecordNotFound:
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Invalid credentials",
		})
		return
	default:
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database error",
		})
		return
	}

	// Compare password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Invalid credentials",
		})
		return
	}

	secret := config.Envs.JWTSecret
	if secret == "" {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "No config found for JWT",
		})
		return
	}

	expiration := time.Now().Add(24 * time.Hour)
	tokenString, err := signToken(user, secret, expiration)
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to create token",
		})
		return
	}

	// Cookie max-age
	maxAge := int(expiration.Unix() - time.Now().Unix())

	isProd := config.Envs.Environment == "production"

	// SameSite cookie policy
	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    tokenString,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   isProd,
		HttpOnly: true,
		SameSite: sameSite,
	})

	// Returned alongside the cookie so API clients can send it as a bearer
	// header instead.
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Login successful",
		Data: map[string]any{
			"token": tokenString,
		},
	})
}

// POST /api/v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	isProd := config.Envs.Environment == "production"

	// Delete the token cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "", // empty value
		Path:     "/",
		MaxAge:   -1, // maxAge < 0 deletes the cookie
		Secure:   isProd,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Logged out successfully",
	})
}

func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	redirectType := r.URL.Query().Get("redirect") // "login" or "register"
	if redirectType == "" {
		redirectType = "login" // default
	}

	state, err := GenerateState(map[string]string{"flow": redirectType})
	if err != nil {
		http.Error(w, "Failed to generate OAuth state", http.StatusInternalServerError)
		return
	}

	url := services.GoogleOauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.FormValue("state")
	stateData, err := DecodeState(state)
	if err != nil {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	flowType := stateData["flow"] // "login" or "register"
	code := r.FormValue("code")

	token, err := services.GoogleOauthConfig.Exchange(context.Background(), code)
	if err != nil {
		http.Error(w, "Code exchange failed", http.StatusInternalServerError)
		fmt.Println("Exchange error:", err)
		return
	}

	client := services.GoogleOauthConfig.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}

	if err := json.Unmarshal(data, &googleUser); err != nil {
		http.Error(w, "Failed to parse user info", http.StatusInternalServerError)
		return
	}

	// Check if user exists
	var existingUser models.User
	err = h.DB.Where("email = ?", googleUser.Email).First(&existingUser).Error

	switch flowType {
	case "register":
		// If registering but user already exists
		if err == nil {
			http.Redirect(w, r, "http://localhost:5173/login?error=user_already_exists", http.StatusTemporaryRedirect)
			return
		}
		// Create new user
		newUser := models.User{
			ID:       uuid.New(),
			Username: googleUser.Name,
			Email:    googleUser.Email,
			Password: "", // Google-authenticated
		}
		if err := h.DB.Create(&newUser).Error; err != nil {
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}
		existingUser = newUser

	case "login":
		// If logging in but user not found
		if err == gorm.ErrRecordNotFound {
			http.Redirect(w, r, "http://localhost:5173/register?error=user_not_found", http.StatusTemporaryRedirect)
			return
		} else if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
	}

	// Issue JWT
	secret := config.Envs.JWTSecret
	expiration := time.Now().Add(24 * time.Hour)
	tokenString, err := signToken(existingUser, secret, expiration)
	if err != nil {
		http.Error(w, "Failed to create JWT", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   config.Envs.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})

	// Redirect user
	redirectURL := "http://localhost:5173/?status=success_login"
	if flowType == "register" {
		redirectURL = "http://localhost:5173/?status=success_register"
	}

	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}
