package site

// chapterTemplate is the html/template for each chapter page. The GitHub
// helpers come from links.Builder.FuncMap.
const chapterTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Chapter.Title}} | {{.SiteTitle}}</title>
  {{with .Chapter.Description}}<meta name="description" content="{{.}}">{{end}}
  <link rel="stylesheet" href="{{.BasePath}}style.css">
  <link rel="stylesheet" href="{{.BasePath}}assets/css/katex.min.css">
</head>
<body>
  <nav class="sidebar">
    <h2 class="site-title"><a href="{{.BasePath}}index.html">{{.SiteTitle}}</a></h2>
    <ol class="chapters">
    {{- range .Chapters}}
      <li{{if eq .Slug $.Chapter.Slug}} class="active"{{end}}><a href="{{$.BasePath}}{{.Path}}">{{.Title}}</a></li>
    {{- end}}
    </ol>
  </nav>
  <main class="content">
    <header class="page-header">
      <h1>{{.Chapter.Title}}</h1>
      <div class="github-links">
        <a href="{{github_edit_url .Chapter.URL}}">Edit on GitHub</a>
        <a href="{{github_page_url .Chapter.URL}}">View source</a>
      </div>
    </header>
    <article class="page-content">
      {{.Content}}
    </article>
  </main>
</body>
</html>
`

// indexTemplate lists the visible chapters with their descriptions.
const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.SiteTitle}}</title>
  <link rel="stylesheet" href="style.css">
</head>
<body>
  <main class="content">
    <header class="page-header">
      <h1>{{.SiteTitle}}</h1>
      <div class="github-links">
        <a href="{{github_page_url "/index.html"}}">View on GitHub</a>
      </div>
    </header>
    <ol class="toc">
    {{- range .Chapters}}
      <li>
        <a href="{{.Path}}">{{.Title}}</a>
        {{with .Description}}<p class="description">{{.}}</p>{{end}}
      </li>
    {{- end}}
    </ol>
  </main>
</body>
</html>
`

// cssContent is the stylesheet shared by generated pages.
const cssContent = `:root {
  --bg: #ffffff;
  --fg: #222222;
  --muted: #666666;
  --accent: #2a6ebb;
  --sidebar-width: 260px;
}

body {
  margin: 0;
  font-family: Georgia, "Times New Roman", serif;
  color: var(--fg);
  background: var(--bg);
  line-height: 1.6;
}

a { color: var(--accent); text-decoration: none; }
a:hover { text-decoration: underline; }

.sidebar {
  position: fixed;
  top: 0;
  bottom: 0;
  width: var(--sidebar-width);
  overflow-y: auto;
  padding: 1rem;
  border-right: 1px solid #e5e5e5;
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
  font-size: 0.9rem;
}

.sidebar .active a { font-weight: bold; }

.content {
  max-width: 46rem;
  margin: 0 auto;
  padding: 2rem 1.5rem;
}

.sidebar + .content { margin-left: calc(var(--sidebar-width) + 2rem); }

.github-links a {
  margin-right: 1rem;
  font-size: 0.85rem;
  color: var(--muted);
}

.toc .description {
  margin: 0.2rem 0 1rem;
  color: var(--muted);
}

pre {
  padding: 0.75rem;
  overflow-x: auto;
  background: #f6f8fa;
  border-radius: 4px;
}

.katex-display { overflow-x: auto; }

@media (max-width: 768px) {
  .sidebar { position: static; width: auto; border-right: none; }
  .sidebar + .content { margin-left: auto; }
}
`
