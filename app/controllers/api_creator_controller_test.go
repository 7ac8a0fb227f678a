package controllers

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanvault/fanvault/app/models"
)

func TestFanAccessWithValidCode(t *testing.T) {
	app, repos := newTestApp(t)
	creator := seedCreator(t, repos, "jane@example.com", "JANE1A2B")

	require.NoError(t, repos.CreatorPost.Create(&models.CreatorPost{
		CreatorID: creator.ID,
		Title:     "Hello",
	}))
	require.NoError(t, repos.CreatorPost.Create(&models.CreatorPost{
		CreatorID: creator.ID,
		Title:     "Second",
	}))

	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/fan/access", map[string]string{
		"email":       "fan@example.com",
		"access_code": " JANE1A2B ",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		CreatorName string              `json:"creator_name"`
		AccessCode  string              `json:"access_code"`
		Posts       []models.CreatorPost `json:"posts"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Jane Creator", body.CreatorName)
	assert.Equal(t, "JANE1A2B", body.AccessCode)
	assert.Len(t, body.Posts, 2)
}

func TestFanAccessWithUnknownCode(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/fan/access", map[string]string{
		"email":       "fan@example.com",
		"access_code": "NOPE0000",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestFanAccessWithInactiveCreator(t *testing.T) {
	app, repos := newTestApp(t)
	creator := seedCreator(t, repos, "jane@example.com", "JANE1A2B")

	creator.Status = models.STATUS_INACTIVE
	require.NoError(t, repos.User.Update(creator))

	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/fan/access", map[string]string{
		"access_code": "JANE1A2B",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestFanAccessPostsAreNewestFirst(t *testing.T) {
	app, repos := newTestApp(t)
	creator := seedCreator(t, repos, "jane@example.com", "JANE1A2B")

	for i := 1; i <= 3; i++ {
		require.NoError(t, repos.CreatorPost.Create(&models.CreatorPost{
			CreatorID: creator.ID,
			Title:     fmt.Sprintf("Post %d", i),
		}))
	}

	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/fan/access", map[string]string{
		"access_code": "JANE1A2B",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Posts []models.CreatorPost `json:"posts"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Posts, 3)
	assert.Equal(t, "Post 3", body.Posts[0].Title)
}
