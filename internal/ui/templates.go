package ui

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/me/pricedesk/pkg/model"
)

// Template functions available in all templates.
var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04:05")
	},
	"toastColor": func(level model.Level) string {
		switch level {
		case model.LevelSuccess:
			return "bg-green-50 border-green-400 text-green-800"
		case model.LevelError:
			return "bg-red-50 border-red-400 text-red-800"
		default:
			return "bg-blue-50 border-blue-400 text-blue-800"
		}
	},
	"statusColor": func(cell string) string {
		switch cell {
		case "Active":
			return "bg-green-100 text-green-800"
		case "Inactive":
			return "bg-gray-100 text-gray-600"
		}
		return ""
	},
	"actionColor": func(kind model.MutationKind) string {
		switch kind {
		case model.MutationCreate:
			return "bg-green-100 text-green-800"
		case model.MutationUpdate:
			return "bg-blue-100 text-blue-800"
		case model.MutationDelete:
			return "bg-red-100 text-red-800"
		default:
			return "bg-gray-100 text-gray-800"
		}
	},
	"listURL": listURL,
	"add": func(a, b int) int {
		return a + b
	},
	"truncate": func(s string, n int) string {
		if len(s) <= n {
			return s
		}
		return s[:n] + "..."
	},
}

// renderTemplate renders a template with the given data.
func renderTemplate(w io.Writer, name string, data map[string]any) error {
	content, ok := templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}

	layout, ok := templates["layout"]
	if !ok {
		return fmt.Errorf("layout template not found")
	}

	tmpl, err := template.New("layout").Funcs(templateFuncs).Parse(layout)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}

	_, err = tmpl.New("content").Parse(content)
	if err != nil {
		return fmt.Errorf("parse content: %w", err)
	}

	return tmpl.Execute(w, data)
}

// templates holds all template content.
var templates = map[string]string{
	"layout": `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <script src="https://cdn.tailwindcss.com"></script>
    <style>
        .htmx-indicator { display: none; }
        .htmx-request .htmx-indicator { display: inline-block; }
        .htmx-request.htmx-indicator { display: inline-block; }
    </style>
</head>
<body class="bg-gray-50 min-h-screen" hx-boost="true">
    {{if .Session}}
    <nav class="bg-white shadow-sm border-b">
        <div class="max-w-7xl mx-auto px-4 sm:px-6 lg:px-8">
            <div class="flex justify-between h-16">
                <div class="flex">
                    <a href="/" class="flex items-center px-2 py-2 text-xl font-bold text-indigo-600">
                        pricedesk
                    </a>
                    <div class="hidden sm:ml-6 sm:flex sm:space-x-8">
                        <a href="/" class="border-transparent text-gray-500 hover:border-gray-300 hover:text-gray-700 inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">
                            Dashboard
                        </a>
                        {{range .Resources}}
                        <a href="{{listURL .}}" class="border-transparent text-gray-500 hover:border-gray-300 hover:text-gray-700 inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">
                            {{.Title}}
                        </a>
                        {{end}}
                        <a href="/settings" class="border-transparent text-gray-500 hover:border-gray-300 hover:text-gray-700 inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">
                            Settings
                        </a>
                    </div>
                </div>
                <div class="flex items-center">
                    <span class="text-sm text-gray-500 mr-4">{{.Session.Username}}</span>
                    <a href="/logout" class="text-sm text-gray-500 hover:text-gray-700">Logout</a>
                </div>
            </div>
        </div>
    </nav>
    {{end}}

    {{if .Toasts}}
    <div id="toasts" class="fixed top-4 right-4 z-50 space-y-2 w-80">
        {{range .Toasts}}
        <div class="toast border-l-4 rounded shadow p-3 text-sm {{toastColor .Level}}">{{.Message}}</div>
        {{end}}
    </div>
    <script>setTimeout(function () { var t = document.getElementById("toasts"); if (t) t.remove(); }, 6000);</script>
    {{end}}

    <main class="max-w-7xl mx-auto py-6 sm:px-6 lg:px-8">
        {{template "content" .}}
    </main>
</body>
</html>`,

	"login": `{{define "content"}}
<div class="min-h-screen flex items-center justify-center bg-gray-50 py-12 px-4 sm:px-6 lg:px-8">
    <div class="max-w-md w-full space-y-8">
        <div>
            <h2 class="mt-6 text-center text-3xl font-extrabold text-gray-900">
                pricedesk
            </h2>
            <p class="mt-2 text-center text-sm text-gray-600">
                Sign in with your pricing admin account
            </p>
        </div>
        {{if .Error}}
        <div class="rounded-md bg-red-50 p-4">
            <div class="text-sm text-red-700">{{.Error}}</div>
        </div>
        {{end}}
        <form class="mt-8 space-y-6" action="/login" method="POST">
            <div class="rounded-md shadow-sm -space-y-px">
                <div>
                    <label for="email" class="sr-only">Email</label>
                    <input id="email" name="email" type="email" required
                           class="appearance-none rounded-none relative block w-full px-3 py-2 border border-gray-300 placeholder-gray-500 text-gray-900 rounded-t-md focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 focus:z-10 sm:text-sm"
                           placeholder="Email address">
                </div>
                <div>
                    <label for="password" class="sr-only">Password</label>
                    <input id="password" name="password" type="password" required
                           class="appearance-none rounded-none relative block w-full px-3 py-2 border border-gray-300 placeholder-gray-500 text-gray-900 rounded-b-md focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 focus:z-10 sm:text-sm"
                           placeholder="Password">
                </div>
            </div>
            <div>
                <button type="submit"
                        class="group relative w-full flex justify-center py-2 px-4 border border-transparent text-sm font-medium rounded-md text-white bg-indigo-600 hover:bg-indigo-700 focus:outline-none focus:ring-2 focus:ring-offset-2 focus:ring-indigo-500">
                    Sign in
                </button>
            </div>
        </form>
    </div>
</div>
{{end}}`,

	"dashboard": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <div class="mb-8">
        <h1 class="text-2xl font-semibold text-gray-900">Dashboard</h1>
        <p class="mt-1 text-sm text-gray-500">Welcome back, {{.Session.Username}}</p>
    </div>

    <div class="grid grid-cols-1 gap-5 sm:grid-cols-2 lg:grid-cols-5 mb-8">
        {{range .Cards}}
        <a href="{{listURL .Schema}}" class="bg-white overflow-hidden shadow rounded-lg hover:shadow-md">
            <div class="p-5">
                <dt class="text-sm font-medium text-gray-500 truncate">{{.Schema.Title}}</dt>
                {{if .Error}}
                <dd class="mt-1 text-sm text-red-600">{{.Error}}</dd>
                {{else if eq .Schema.Paging "server"}}
                <dd class="mt-1 text-3xl font-semibold text-gray-900">{{.Pages}}</dd>
                <dd class="text-xs text-gray-500">pages</dd>
                {{else}}
                <dd class="mt-1 text-3xl font-semibold text-gray-900">{{.Items}}</dd>
                <dd class="text-xs text-gray-500">plans</dd>
                {{end}}
            </div>
        </a>
        {{end}}
    </div>

    <div class="bg-white shadow rounded-lg">
        <div class="px-4 py-5 sm:px-6 border-b border-gray-200">
            <h3 class="text-lg leading-6 font-medium text-gray-900">Recent activity</h3>
        </div>
        <ul class="divide-y divide-gray-200">
            {{range .Activity}}
            <li class="px-4 py-3 sm:px-6 flex items-center justify-between text-sm">
                <div>
                    <span class="inline-flex items-center px-2 py-0.5 rounded text-xs font-medium {{actionColor .Action}}">{{.Action}}</span>
                    <span class="ml-2 text-gray-900">{{.Resource}}{{if .ItemID}} #{{.ItemID}}{{end}}{{if .Detail}} ({{.Detail}}){{end}}</span>
                    <span class="ml-2 text-gray-500">by {{.Username}}</span>
                </div>
                <span class="text-gray-500">{{formatTime .CreatedAt}}</span>
            </li>
            {{else}}
            <li class="px-4 py-6 text-center text-gray-500 text-sm">No changes yet.</li>
            {{end}}
        </ul>
    </div>
    <p class="mt-4 text-xs text-gray-400">Up {{.Uptime}}</p>
</div>
{{end}}`,

	"error": `{{define "content"}}
<div class="min-h-screen flex items-center justify-center">
    <div class="text-center">
        <h1 class="text-4xl font-bold text-gray-900 mb-4">Error</h1>
        <p class="text-gray-600 mb-8">{{.Message}}</p>
        <a href="/" class="text-indigo-600 hover:text-indigo-500">Return to Dashboard</a>
    </div>
</div>
{{end}}`,

	"pricings/list": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <div class="flex justify-between items-center mb-6">
        <h1 class="text-2xl font-semibold text-gray-900">{{.Schema.Title}}</h1>
        <div class="flex items-center space-x-2">
            <a href="{{.CSVURL}}" hx-boost="false" class="inline-flex items-center px-3 py-2 border border-gray-300 text-sm font-medium rounded-md text-gray-700 bg-white hover:bg-gray-50">CSV</a>
            <a href="{{.XLSXURL}}" hx-boost="false" class="inline-flex items-center px-3 py-2 border border-gray-300 text-sm font-medium rounded-md text-gray-700 bg-white hover:bg-gray-50">XLSX</a>
            <form action="{{.BaseURL}}/modal/create" method="POST">
                <button type="submit" class="inline-flex items-center px-4 py-2 border border-transparent text-sm font-medium rounded-md shadow-sm text-white bg-indigo-600 hover:bg-indigo-700">
                    Add
                </button>
            </form>
        </div>
    </div>

    {{if .Schema.FilterField}}
    <form action="{{.BaseURL}}" method="GET" class="mb-4 flex items-center space-x-2">
        <label for="filter" class="text-sm text-gray-600">{{.Schema.FilterLabel}}</label>
        {{if .FilterOptions}}
        <select id="filter" name="filter" class="border border-gray-300 rounded-md px-2 py-1 text-sm">
            <option value="">All</option>
            {{range .FilterOptions}}
            <option value="{{.}}"{{if eq . $.View.Filter.Value}} selected{{end}}>{{.}}</option>
            {{end}}
        </select>
        {{else}}
        <input id="filter" name="filter" value="{{.View.Filter.Value}}" class="border border-gray-300 rounded-md px-2 py-1 text-sm" placeholder="All">
        {{end}}
        <button type="submit" class="px-3 py-1 border border-gray-300 text-sm rounded-md bg-white hover:bg-gray-50">Filter</button>
        {{if .View.Filter.Value}}<a href="{{.BaseURL}}" class="text-sm text-indigo-600 hover:text-indigo-500">Clear</a>{{end}}
    </form>
    {{end}}

    <div class="bg-white shadow overflow-x-auto sm:rounded-md">
        <table class="min-w-full divide-y divide-gray-200">
            <thead class="bg-gray-50">
                <tr>
                    {{range .Schema.Columns}}
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">{{.Header}}</th>
                    {{end}}
                    <th class="px-4 py-3"></th>
                </tr>
            </thead>
            <tbody class="bg-white divide-y divide-gray-200">
                {{range .Rows}}
                <tr id="row-{{.ID}}" class="hover:bg-gray-50">
                    {{range .Cells}}
                    <td class="px-4 py-2 text-sm text-gray-900 whitespace-nowrap">
                        {{with statusColor .}}<span class="inline-flex px-2 py-0.5 rounded text-xs font-medium {{.}}">{{end}}{{truncate . 40}}{{if statusColor .}}</span>{{end}}
                    </td>
                    {{end}}
                    <td class="px-4 py-2 text-right text-sm whitespace-nowrap">
                        {{if .Pending}}
                        <span class="text-red-700 mr-2">Delete this item?</span>
                        <form action="{{$.BaseURL}}/{{.ID}}/delete/confirm" method="POST" class="inline">
                            <button type="submit" class="px-2 py-1 text-xs font-medium rounded text-white bg-red-600 hover:bg-red-700">Yes, delete</button>
                        </form>
                        <form action="{{$.BaseURL}}/{{.ID}}/delete/cancel" method="POST" class="inline">
                            <button type="submit" class="px-2 py-1 text-xs font-medium rounded border border-gray-300 text-gray-700 bg-white hover:bg-gray-50">Cancel</button>
                        </form>
                        {{else}}
                        <form action="{{$.BaseURL}}/{{.ID}}/edit" method="POST" class="inline">
                            <button type="submit" class="px-2 py-1 text-xs font-medium rounded border border-gray-300 text-gray-700 bg-white hover:bg-gray-50">Edit</button>
                        </form>
                        <form action="{{$.BaseURL}}/{{.ID}}/delete/request" method="POST" class="inline">
                            <button type="submit" class="px-2 py-1 text-xs font-medium rounded border border-red-300 text-red-700 bg-white hover:bg-red-50">Delete</button>
                        </form>
                        {{end}}
                    </td>
                </tr>
                {{else}}
                <tr>
                    <td colspan="{{add (len .Schema.Columns) 1}}" class="px-4 py-8 text-center text-gray-500 text-sm">
                        {{if .View.Loaded}}No items found.{{else}}Could not load items.{{end}}
                    </td>
                </tr>
                {{end}}
            </tbody>
        </table>
    </div>

    <div class="mt-4 flex justify-between items-center">
        {{if .View.Page.HasPrev}}
        <a href="{{.PrevURL}}" class="inline-flex items-center px-4 py-2 border border-gray-300 text-sm font-medium rounded-md text-gray-700 bg-white hover:bg-gray-50">Previous</a>
        {{else}}
        <span class="inline-flex items-center px-4 py-2 border border-gray-200 text-sm font-medium rounded-md text-gray-300 bg-white cursor-not-allowed">Previous</span>
        {{end}}
        <span class="text-sm text-gray-500">Page {{.View.Page.Page}} of {{.View.Page.TotalPages}}</span>
        {{if .View.Page.HasNext}}
        <a href="{{.NextURL}}" class="inline-flex items-center px-4 py-2 border border-gray-300 text-sm font-medium rounded-md text-gray-700 bg-white hover:bg-gray-50">Next</a>
        {{else}}
        <span class="inline-flex items-center px-4 py-2 border border-gray-200 text-sm font-medium rounded-md text-gray-300 bg-white cursor-not-allowed">Next</span>
        {{end}}
    </div>

    {{if .View.Modal}}
    <div id="modal" class="fixed inset-0 bg-gray-600 bg-opacity-50 flex items-center justify-center z-40">
        <div class="bg-white rounded-lg shadow-xl w-full max-w-lg p-6">
            <h3 class="text-lg font-medium text-gray-900 mb-4">
                {{if eq .View.Modal "edit"}}Edit {{.Schema.Title}} #{{.View.EditID}}{{else}}Add to {{.Schema.Title}}{{end}}
            </h3>
            <form action="{{.FormAction}}" method="POST" class="space-y-4">
                {{range .Fields}}
                <div>
                    {{if eq .Kind "bool"}}
                    <label class="inline-flex items-center text-sm text-gray-700">
                        <input type="checkbox" name="{{.Name}}" value="true"{{if .Checked}} checked{{end}} class="mr-2">
                        {{.Label}}
                    </label>
                    {{else}}
                    <label for="f-{{.Name}}" class="block text-sm font-medium text-gray-700">{{.Label}}{{if .Required}} *{{end}}</label>
                    {{if .Options}}
                    <select id="f-{{.Name}}" name="{{.Name}}" class="mt-1 block w-full border border-gray-300 rounded-md px-3 py-2 text-sm">
                        <option value=""></option>
                        {{$v := .Value}}
                        {{range .Options}}<option value="{{.}}"{{if eq . $v}} selected{{end}}>{{.}}</option>{{end}}
                    </select>
                    {{else}}
                    <input id="f-{{.Name}}" name="{{.Name}}" value="{{.Value}}"{{if eq .Kind "decimal"}} inputmode="decimal"{{end}}{{if eq .Kind "int"}} inputmode="numeric"{{end}}
                           class="mt-1 block w-full border border-gray-300 rounded-md px-3 py-2 text-sm">
                    {{end}}
                    {{end}}
                </div>
                {{end}}
                <div class="flex justify-end space-x-2 pt-2">
                    <button type="submit" formaction="{{.BaseURL}}/modal/close" formnovalidate
                            class="px-4 py-2 border border-gray-300 text-sm font-medium rounded-md text-gray-700 bg-white hover:bg-gray-50">Cancel</button>
                    <button type="submit" class="px-4 py-2 border border-transparent text-sm font-medium rounded-md text-white bg-indigo-600 hover:bg-indigo-700">
                        {{if eq .View.Mutation "SUBMITTING"}}Saving...{{else}}Save{{end}}
                    </button>
                </div>
            </form>
        </div>
    </div>
    {{end}}
</div>
{{end}}`,
}
