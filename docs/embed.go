package docs

import _ "embed"

//go:embed workflow-api.openapi.yaml
var embeddedWorkflowOpenAPI []byte

//go:embed swagger.html
var embeddedWorkflowSwaggerHTML []byte

// WorkflowOpenAPI is the OpenAPI document for the workflow API.
var WorkflowOpenAPI = embeddedWorkflowOpenAPI

// WorkflowSwaggerHTML is the Swagger UI page serving that document.
var WorkflowSwaggerHTML = embeddedWorkflowSwaggerHTML
