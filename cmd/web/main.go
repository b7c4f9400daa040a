// @title           Job Tracker API
// @version         1.0
// @description     Personal job-application tracker: applications, resumes, reminders and analytics.
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import "jobtracker_backend/internal/app"

func main() {
	app.Run()
}
