package frontend

import "github.com/gin-gonic/gin"

// Flash messages ride a short-lived cookie: set on redirect, consumed on the
// next page render. Same mechanism as the auth token cookie. Gin's cookie
// helpers already URL-escape values on the way out and unescape on the way
// in, so the message goes in verbatim.

const (
	flashCookie      = "flash"
	flashLevelCookie = "flash_level"
)

func setFlash(c *gin.Context, level, msg string) {
	c.SetCookie(flashCookie, msg, 60, "/", "", false, true)
	c.SetCookie(flashLevelCookie, level, 60, "/", "", false, true)
}

func flashError(c *gin.Context, msg string)   { setFlash(c, "error", msg) }
func flashSuccess(c *gin.Context, msg string) { setFlash(c, "success", msg) }

// takeFlash reads and clears the pending flash message, if any.
func takeFlash(c *gin.Context) (level, msg string) {
	msg, err := c.Cookie(flashCookie)
	if err != nil {
		return "", ""
	}
	level, _ = c.Cookie(flashLevelCookie)
	if level == "" {
		level = "info"
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	c.SetCookie(flashLevelCookie, "", -1, "/", "", false, true)
	return level, msg
}
