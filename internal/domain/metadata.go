package domain

// MetadataKind names an independently collected fact group.
type MetadataKind string

const (
	MetadataSystem MetadataKind = "system"
	MetadataPath   MetadataKind = "path"
	MetadataFiles  MetadataKind = "files"
	MetadataGit    MetadataKind = "git"
	MetadataDocker MetadataKind = "docker"
	MetadataGPU    MetadataKind = "gpu"
)

// Metadata is a point-in-time snapshot of the user's environment. Optional
// groups are nil when disabled or unavailable; failures are listed in
// Unavailable keyed by group.
type Metadata struct {
	System      SystemInfo
	Path        PathInfo
	Files       FileListing
	Git         *GitInfo
	Docker      *DockerInfo
	GPU         *GPUInfo
	Unavailable map[MetadataKind]error
}

// Failed reports whether the given group failed during collection.
func (m Metadata) Failed(kind MetadataKind) bool {
	_, ok := m.Unavailable[kind]
	return ok
}

// SystemInfo describes the operating system.
type SystemInfo struct {
	Platform     string `json:"platform"`
	Release      string `json:"platform_release"`
	Version      string `json:"platform_version"`
	Architecture string `json:"architecture"`
	Hostname     string `json:"hostname"`
	Cores        int    `json:"total_cores"`
}

// PathInfo describes the user, directories and executables on PATH.
type PathInfo struct {
	User               string   `json:"user"`
	CurrentDirectory   string   `json:"current_directory"`
	HomeDirectory      string   `json:"home_directory"`
	ExecutableCommands []string `json:"executable_commands"`
}

// FileListing splits the current directory into visible and hidden entries.
type FileListing struct {
	Directories          []string `json:"directory"`
	Files                []string `json:"files"`
	InvisibleFiles       []string `json:"invisible_files"`
	InvisibleDirectories []string `json:"invisible_directory"`
}

// GitInfo captures repository state. A zero value means "not a repository".
type GitInfo struct {
	SHA                 string      `json:"git_sha"`
	CurrentBranch       string      `json:"git_current_branch"`
	Remotes             []GitRemote `json:"git_remotes"`
	LatestCommitAuthor  string      `json:"git_latest_commit_author"`
	LatestCommitDate    string      `json:"git_latest_commit_date"`
	LatestCommitMessage string      `json:"git_latest_commit_message"`
}

// IsRepository reports whether git data was found.
func (g *GitInfo) IsRepository() bool {
	return g != nil && g.SHA != ""
}

// GitRemote is one named remote with its fetch and push URLs.
type GitRemote struct {
	Name     string `json:"remote_name"`
	FetchURL string `json:"fetch_url"`
	PushURL  string `json:"push_url"`
}

// DockerInfo lists containers and images known to the local daemon.
type DockerInfo struct {
	Containers []DockerContainer `json:"docker_containers"`
	Images     []DockerImage     `json:"docker_images"`
}

type DockerContainer struct {
	ID      string `json:"id"`
	Image   string `json:"image"`
	Command string `json:"command"`
	Created string `json:"created"`
	Status  string `json:"status"`
	Names   string `json:"names"`
	Ports   string `json:"ports"`
}

type DockerImage struct {
	Repository string `json:"repository"`
	Tag        string `json:"tag"`
	ID         string `json:"image_id"`
	Created    string `json:"created"`
	Size       string `json:"size"`
}

// GPUInfo describes NVIDIA hardware when nvidia-smi / nvcc are installed.
type GPUInfo struct {
	ModelName     string `json:"gpu_model_name"`
	DriverVersion string `json:"gpu_driver_version"`
	CUDAVersion   string `json:"cuda_version"`
}
