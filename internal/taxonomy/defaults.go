package taxonomy

// DefaultDomains is the built-in keyword table, used when no taxonomy file is configured.
// Order matters: a tag such as "portfolio" appears in both professional and
// creative and is always classified as professional.
var DefaultDomains = []Domain{
	{
		Name: "technical",
		Keywords: []string{
			"programming", "coding", "software", "development", "web", "mobile",
			"app", "data", "ai", "ml", "machine learning", "deep learning",
			"cloud", "devops", "backend", "frontend", "fullstack", "database",
			"python", "java", "javascript", "react", "node", "angular", "vue",
			"aws", "azure", "gcp", "docker", "kubernetes", "microservices",
		},
	},
	{
		Name: "academic",
		Keywords: []string{
			"research", "paper", "thesis", "study", "education", "learning",
			"teaching", "course", "university", "college", "school", "degree",
			"phd", "masters", "bachelors", "professor", "student", "academic",
			"science", "math", "physics", "chemistry", "biology", "literature",
		},
	},
	{
		Name: "professional",
		Keywords: []string{
			"career", "job", "work", "industry", "business", "corporate",
			"startup", "entrepreneurship", "management", "leadership", "hr",
			"recruitment", "interview", "resume", "cv", "portfolio",
			"networking", "mentor", "mentorship", "internship", "project",
			"collaboration",
		},
	},
	{
		Name: "creative",
		Keywords: []string{
			"design", "art", "music", "writing", "photography", "video", "film",
			"animation", "graphic", "ux", "ui", "user experience", "creative",
			"portfolio", "illustration", "drawing", "painting",
		},
	},
}

// Default returns a Taxonomy built from DefaultDomains.
func Default() *Taxonomy {
	return MustNew(DefaultDomains)
}
